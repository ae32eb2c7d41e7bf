package server

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gridlink/internal/constants"
	"gridlink/internal/storage"
	"gridlink/internal/types"
)

func (s *Server) HandleStorageUpload(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusServiceUnavailable, constants.MsgS3NotConfigured)
		return
	}

	var req types.UploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.FileContent == "" || req.FileName == "" {
		writeError(w, http.StatusBadRequest, constants.MsgInvalidPayload)
		return
	}

	// Strip a data URL prefix ("data:application/json;base64,...")
	// before decoding.
	content := req.FileContent
	if idx := strings.Index(content, ","); idx >= 0 {
		content = content[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		writeError(w, http.StatusBadRequest, "File content must be base64 encoded")
		return
	}

	metadata := map[string]string{
		"fileName":   req.FileName,
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if req.FileHash != "" {
		metadata["fileHash"] = req.FileHash
	}
	for key, value := range req.Metadata {
		metadata["meta_"+key] = fmt.Sprint(value)
	}

	key, err := s.Store.Upload(r.Context(), data, req.FileName, req.FileHash, metadata)
	if err != nil {
		log.Printf("Error uploading to S3: %v", err)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	url, err := s.Store.PresignedURL(r.Context(), key, constants.DefaultPresignExpiry)
	if err != nil {
		log.Printf("Error generating presigned URL: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate URL")
		return
	}

	writeJSON(w, http.StatusOK, types.UploadResponse{
		Success:  true,
		S3Key:    key,
		S3URL:    url,
		FileName: req.FileName,
		FileSize: len(data),
		Metadata: metadata,
	})
}

func (s *Server) HandlePresignedURL(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusServiceUnavailable, constants.MsgS3NotConfigured)
		return
	}

	fileHash := r.PathValue("fileHash")
	expires := presignExpiry(r)

	// The key layout is {year}/{month}/{hash}.json; resolving the hash
	// through a catalog would replace this once one exists.
	key := storage.ObjectKey(fileHash, time.Now())

	url, err := s.Store.PresignedURL(r.Context(), key, expires)
	if err != nil {
		log.Printf("Error generating presigned URL: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate URL")
		return
	}

	writeJSON(w, http.StatusOK, types.PresignedURLResponse{
		Success:   true,
		S3Key:     key,
		S3URL:     url,
		ExpiresIn: int(expires.Seconds()),
	})
}

func (s *Server) HandleStorageDownload(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusServiceUnavailable, constants.MsgS3NotConfigured)
		return
	}

	key := r.URL.Query().Get("s3Key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "Missing s3Key parameter")
		return
	}

	expires := presignExpiry(r)
	url, err := s.Store.PresignedURL(r.Context(), key, expires)
	if err != nil {
		log.Printf("Error generating download URL: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate download URL")
		return
	}

	writeJSON(w, http.StatusOK, types.PresignedURLResponse{
		Success:   true,
		S3Key:     key,
		URL:       url,
		ExpiresIn: int(expires.Seconds()),
	})
}

func presignExpiry(r *http.Request) time.Duration {
	if raw := r.URL.Query().Get("expiresIn"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			d := time.Duration(secs) * time.Second
			if d > constants.MaxPresignExpiry {
				d = constants.MaxPresignExpiry
			}
			return d
		}
	}
	return constants.DefaultPresignExpiry
}
