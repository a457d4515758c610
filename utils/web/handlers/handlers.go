package handlers

import (
	"net/http"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

// Handshake es la respuesta de un módulo a un chequeo de conexión.
type Handshake struct {
	Module  string `json:"modulo"`
	Message string `json:"mensaje"`
}

// HandshakeHandler se usa para chequear la conexión al servidor. Responde qué módulo
// atiende en ese puerto, así el cliente detecta si se conectó al módulo equivocado.
//
// Parámetros:
//   - module: el nombre del módulo que atiende (por ejemplo "memoria")
//   - message: el mensaje que querés devolver en la respuesta
//
// Ejemplo:
//
//	func main() {
//		http.HandleFunc("GET /memoria", handlers.HandshakeHandler("memoria", "Memoria en funcionamiento"))
//
//		err := server.InitServer(8002)
//		if err != nil {
//			slog.Error("init server error: ", err)
//		}
//	}
func HandshakeHandler(module string, message string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		server.SendJsonResponse(writer, Handshake{Module: module, Message: message})
	}
}
