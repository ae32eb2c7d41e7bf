package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"gridlink/internal/config"
	"gridlink/internal/constants"
	"gridlink/internal/security"
	"gridlink/internal/session"
	"gridlink/internal/types"
)

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		OK:       true,
		Version:  constants.Version,
		LogLevel: s.Config.LogLevel,
	})
}

func (s *Server) HandleSessionOpen(w http.ResponseWriter, r *http.Request) {
	clientIP := security.GetClientIP(r)
	if !s.Protector.Check(clientIP) {
		writeError(w, http.StatusTooManyRequests, constants.MsgTooManyAttempts)
		return
	}

	var req types.OpenSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Pin) < constants.MinPinLength || len(req.Pin) > constants.MaxPinLength {
		writeError(w, http.StatusBadRequest, constants.MsgInvalidPayload)
		return
	}

	sess, err := s.Sessions.Open(req.Pin)
	if err != nil {
		if errors.Is(err, session.ErrInvalidPin) {
			s.Protector.RecordFailure(clientIP)
			writeError(w, http.StatusUnauthorized, constants.MsgInvalidPin)
			return
		}
		log.Printf("Failed to open session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to open session")
		return
	}

	s.Protector.RecordSuccess(clientIP)
	log.Printf("🔔 Session opened, expires %s", sess.ExpiresAt.Format("15:04:05"))

	writeJSON(w, http.StatusOK, types.OpenSessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UnixMilli(),
	})
}

func (s *Server) HandleSessionRevoke(w http.ResponseWriter, r *http.Request) {
	var req types.RevokeSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Token == "" {
		writeError(w, http.StatusBadRequest, constants.MsgTokenRequired)
		return
	}

	s.Sessions.Revoke(req.Token)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleConfigGet(w http.ResponseWriter, r *http.Request) {
	cfg := s.Config

	var view types.ConfigView
	view.Influx.URL = cfg.Influx.URL
	view.Influx.Org = cfg.Influx.Org
	view.Influx.Bucket = cfg.Influx.Bucket
	view.Blockchain.RPCURL = cfg.Blockchain.RPCURL
	view.Blockchain.ContractAddress = cfg.Blockchain.ContractAddress
	view.Blockchain.HasPrivateKey = cfg.Blockchain.PrivateKey != ""
	view.Connector.Port = cfg.Port
	view.Connector.SessionTTLSeconds = int(s.Sessions.TTL().Seconds())
	view.Connector.LogLevel = cfg.LogLevel
	view.Connector.AllowedOrigins = cfg.AllowedOrigins

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) HandleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var req types.ConfigUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updates := make(map[string]string)
	if req.Influx != nil {
		setIf(updates, "INFLUX_URL", req.Influx.URL)
		setIf(updates, "INFLUX_ORG", req.Influx.Org)
		setIf(updates, "INFLUX_BUCKET", req.Influx.Bucket)
		setIf(updates, "INFLUX_TOKEN", req.Influx.Token)
	}
	if req.Blockchain != nil {
		setIf(updates, "POLYGON_RPC_URL", req.Blockchain.RPCURL)
		setIf(updates, "ANCHOR_CONTRACT_ADDRESS", req.Blockchain.ContractAddress)
		setIf(updates, "ANCHOR_PRIVATE_KEY", req.Blockchain.PrivateKey)
	}
	if req.Connector != nil {
		if req.Connector.Port > 0 {
			updates["CONNECTOR_PORT"] = strconv.Itoa(req.Connector.Port)
		}
		if req.Connector.SessionTTLSeconds > 0 {
			updates["SESSION_TTL_SECONDS"] = strconv.Itoa(req.Connector.SessionTTLSeconds)
		}
		setIf(updates, "LOG_LEVEL", req.Connector.LogLevel)
		setIf(updates, "CONNECTOR_ALLOWED_ORIGINS", strings.TrimSpace(req.Connector.AllowedOrigins))
	}

	if err := config.UpdateEnvFile(".env.local", updates); err != nil {
		log.Printf("Config update error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update config")
		return
	}

	writeJSON(w, http.StatusOK, types.ConfigUpdateResponse{
		Success: true,
		Message: "Configuration updated. Please restart the server to apply changes.",
	})
}

func setIf(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}
