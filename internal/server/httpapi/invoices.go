package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

type processResponse struct {
	Success bool                `json:"success"`
	Data    *models.InvoiceData `json:"data"`
	Expense *models.Expense     `json:"expense,omitempty"`
}

func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Invoices.List(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// multipartSlack covers the boundaries and part headers around the file.
const multipartSlack = 1 << 20

func fileTooLarge(w http.ResponseWriter) {
	writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Message: "File too large", Field: "file"})
}

func (s *Server) uploadInvoice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+multipartSlack)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fileTooLarge(w)
			return
		}
		s.writeError(w, r, models.NewValidationError("file", "No file uploaded"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, models.NewValidationError("file", "No file uploaded"))
		return
	}
	defer file.Close()
	if header.Size > s.opts.MaxUploadBytes {
		fileTooLarge(w)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	inv, err := s.svc.Invoices.Upload(r.Context(), userID(r.Context()), header.Filename, contentType, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) processInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := s.svc.Invoices.Process(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, processResponse{Success: true, Data: res.Data, Expense: res.Expense})
}

func (s *Server) invoiceFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	url, err := s.svc.Invoices.FileURL(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
