package repository

import (
	"context"
	"testing"
	"time"

	"voucherflow/internal/models"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDocumentRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	doc := &models.Document{
		ID:               uuid.New(),
		TenantID:         uuid.New(),
		AttachmentID:     uuid.New(),
		SenderEmail:      "billing@example.com",
		ReceivedAt:       time.Now().UTC(),
		ExtractionStatus: models.ExtractionStatusPending,
	}

	mock.ExpectExec("INSERT INTO voucher_reception_documents").
		WithArgs(doc.ID, doc.TenantID, doc.AttachmentID, doc.SenderEmail, doc.ReceivedAt, doc.ExtractionStatus).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewDocumentRepository(mock, zap.NewNop())
	require.NoError(t, repo.Create(context.Background(), doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_GetOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	tenantID := uuid.New()

	mock.ExpectQuery("SELECT tenant_id FROM voucher_reception_documents").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"tenant_id"}).AddRow(tenantID))

	repo := NewDocumentRepository(mock, zap.NewNop())
	owner, err := repo.GetOwner(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, tenantID, owner)
}

func TestDocumentRepository_GetOwner_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT tenant_id FROM voucher_reception_documents").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"tenant_id"}))

	repo := NewDocumentRepository(mock, zap.NewNop())
	_, err = repo.GetOwner(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentRepository_UpdateExtractionState(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	now := time.Now().UTC()
	message := "boom"

	mock.ExpectExec("UPDATE voucher_reception_documents").
		WithArgs(models.ExtractionStatusFailed, &now, &message, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewDocumentRepository(mock, zap.NewNop())
	require.NoError(t, repo.UpdateExtractionState(context.Background(), id, models.ExtractionStatusFailed, &now, &message))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_ListByTenant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tenantID := uuid.New()
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "tenant_id", "attachment_id", "sender_email", "received_at",
		"extraction_status", "extraction_date", "processing_error",
		"filename", "mimetype",
	}).
		AddRow(uuid.New(), tenantID, uuid.New(), "a@example.com", now,
			models.ExtractionStatusCompleted, &now, (*string)(nil), "a.pdf", "application/pdf").
		AddRow(uuid.New(), tenantID, uuid.New(), "b@example.com", now,
			models.ExtractionStatusNone, (*time.Time)(nil), (*string)(nil), "b.png", "image/png")

	mock.ExpectQuery("SELECT (.+) FROM voucher_reception_documents d JOIN attachments a").
		WithArgs(tenantID).
		WillReturnRows(rows)

	repo := NewDocumentRepository(mock, zap.NewNop())
	docs, err := repo.ListByTenant(context.Background(), tenantID, 20, 0)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "a.pdf", docs[0].Filename)
	assert.Equal(t, models.ExtractionStatusNone, docs[1].ExtractionStatus)
}
