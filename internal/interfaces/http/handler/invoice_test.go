package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	printingapp "github.com/medstore/backend/internal/application/printing"
	"github.com/medstore/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceHandler_Render(t *testing.T) {
	api := newTestAPI(t)
	supplier := api.createSupplier("Mankind")
	m := api.createMedicine("Dolo 650", 20, "3.00", supplier.ID)
	sale := api.recordSale(map[string]any{"medicine_id": m.ID, "quantity": 2})
	path := fmt.Sprintf("/api/v1/sales/%d/invoice", sale.ID)

	t.Run("html by default", func(t *testing.T) {
		w := api.get(path)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		body := w.Body.String()
		assert.Contains(t, body, sale.InvoiceNumber)
		assert.Contains(t, body, "Piyu Medical Store")
		assert.Contains(t, body, "Dolo 650")
		assert.Zero(t, api.renderer.calls)
	})

	t.Run("pdf", func(t *testing.T) {
		w := api.get(path + "?format=pdf")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `inline; filename="`+sale.InvoiceNumber+`.pdf"`, w.Header().Get("Content-Disposition"))
		assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
		assert.Equal(t, 1, api.renderer.calls)
	})

	t.Run("unknown format", func(t *testing.T) {
		requireErrorCode(t, api.get(path+"?format=docx"), http.StatusBadRequest, dto.ErrCodeInvalidInput)
	})

	t.Run("unknown sale", func(t *testing.T) {
		requireErrorCode(t, api.get("/api/v1/sales/999/invoice"), http.StatusNotFound, dto.ErrCodeNotFound)
	})
}

func TestInvoiceHandler_ArchiveIsIdempotent(t *testing.T) {
	api := newTestAPI(t)
	supplier := api.createSupplier("Cipla")
	m := api.createMedicine("Asthalin", 10, "120.00", supplier.ID)
	sale := api.recordSale(map[string]any{"medicine_id": m.ID, "quantity": 1})
	path := fmt.Sprintf("/api/v1/sales/%d/invoice/archive", sale.ID)

	var first, second printingapp.ArchivedInvoice
	decodeEnvelope(t, api.sendJSON(http.MethodPost, path, nil), &first)
	decodeEnvelope(t, api.sendJSON(http.MethodPost, path, nil), &second)

	assert.Equal(t, "invoices/"+sale.InvoiceNumber+".pdf", first.StorageKey)
	assert.Equal(t, first.StorageKey, second.StorageKey)
	assert.Contains(t, first.DownloadURL, first.StorageKey)
	assert.Equal(t, 1, api.renderer.calls, "second archive reuses the stored object")
	assert.Len(t, api.storage.objects, 1)

	requireErrorCode(t, api.sendJSON(http.MethodPost, "/api/v1/sales/999/invoice/archive", nil),
		http.StatusNotFound, dto.ErrCodeNotFound)
}
