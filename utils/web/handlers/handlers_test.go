package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandshakeHandler(t *testing.T) {
	recorder := httptest.NewRecorder()
	HandshakeHandler("memoria", "Memoria en funcionamiento")(recorder, httptest.NewRequest(http.MethodGet, "/memoria", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var handshake Handshake
	if err := json.NewDecoder(recorder.Body).Decode(&handshake); err != nil {
		t.Fatalf("Expected a JSON body, got: %v", err)
	}
	if handshake.Module != "memoria" {
		t.Errorf("Expected module memoria, got %s", handshake.Module)
	}
	if handshake.Message != "Memoria en funcionamiento" {
		t.Errorf("Expected message 'Memoria en funcionamiento', got %s", handshake.Message)
	}
}
