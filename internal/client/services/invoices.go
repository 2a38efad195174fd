package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/pending"
	"github.com/dmitrijs2005/fintrack/internal/client/transport"
	"github.com/dmitrijs2005/fintrack/internal/filex"
)

const (
	invoicesPath   = "/api/invoices"
	uploadPath     = "/api/invoices/upload"
	MaxUploadBytes = 10 << 20
)

var ErrNotSynced = errors.New("invoice is not synced yet")

type InvoiceService struct {
	base
	res     resource[models.Invoice]
	maxSize int64
}

func NewInvoiceService(d Deps) *InvoiceService {
	return &InvoiceService{
		base:    newBase(d, "invoices"),
		maxSize: MaxUploadBytes,
		res: resource[models.Invoice]{
			listPath:   invoicesPath,
			createPath: uploadPath,
			key:        func(i models.Invoice) string { return idKey(i.ID) },
			fromMutation: func(m models.QueuedMutation) models.Invoice {
				var fp transport.FilePayload
				_ = json.Unmarshal(m.Data, &fp)
				return models.Invoice{
					ID:          -m.Timestamp,
					FileName:    fp.FileName,
					ContentType: fp.ContentType,
					Status:      "pending",
					CreatedAt:   m.EnqueuedAt().UTC().Format("2006-01-02T15:04:05Z07:00"),
				}
			},
		},
	}
}

func (s *InvoiceService) List(ctx context.Context) (Listing[models.Invoice], error) {
	return list(ctx, &s.base, s.res, invoicesPath, nil)
}

// Upload reads the file at path and uploads it. Offline uploads are queued
// with the file contents.
func (s *InvoiceService) Upload(ctx context.Context, path string) (pending.Record[models.Invoice], error) {
	name, contentType, data, err := filex.ReadUpload(path, s.maxSize)
	if err != nil {
		return pending.Record[models.Invoice]{}, err
	}
	fp := transport.FilePayload{FileName: name, ContentType: contentType, Data: data}
	draft := models.Invoice{FileName: name, ContentType: contentType, Status: "pending"}
	return create(ctx, &s.base, s.res, fp, draft)
}

// Process asks the server to extract an expense from the invoice. The
// result is nil when the request was queued.
func (s *InvoiceService) Process(ctx context.Context, id int64) (*models.ProcessResult, error) {
	if id <= 0 {
		return nil, ErrNotSynced
	}
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}
	resp, err := s.api.Do(ctx, http.MethodPost, fmt.Sprintf("%s/%d/process", invoicesPath, id), nil, s.timeout, uid)
	if err != nil {
		return nil, err
	}
	if resp.Offline {
		return nil, nil
	}

	var res models.ProcessResult
	if err := resp.Decode(&res); err != nil {
		return nil, err
	}
	s.invalidate(ctx, uid, invoicesPath, expensesPath+"?", statsPath)
	return &res, nil
}
