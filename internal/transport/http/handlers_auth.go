package httptransport

import (
	"net/http"

	"pharmaops/pkg/platform/middleware/metadata"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.logger.Warn("login rejected",
			"email", req.Email,
			"client_ip", metadata.GetClientIP(r.Context()),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
