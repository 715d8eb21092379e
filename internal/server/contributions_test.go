package server

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"familyhub/internal/store"
	"familyhub/pkg/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContributions struct {
	ContributionStore

	created []*types.Contribution
	updated []types.Changes
	filters []types.ContributionFilter
}

func (f *fakeContributions) UpdateContribution(_ context.Context, id string, changes types.Changes) (*types.Contribution, error) {
	f.updated = append(f.updated, changes)
	return &types.Contribution{ID: id, UserID: "bob", Status: types.ContributionStatusPending}, nil
}

func (f *fakeContributions) CreateContribution(_ context.Context, c *types.Contribution) (*types.Contribution, error) {
	c.ID = "contrib-1"
	if c.Status == "" {
		c.Status = types.ContributionStatusPending
	}
	f.created = append(f.created, c)
	return c, nil
}

func (f *fakeContributions) Contributions(_ context.Context, filter types.ContributionFilter, _ store.Page) ([]*types.ContributionDetail, error) {
	f.filters = append(f.filters, filter)
	return nil, nil
}

func (f *fakeContributions) Summary(_ context.Context, filter types.ContributionFilter) (*types.FinancialSummary, error) {
	f.filters = append(f.filters, filter)
	return &types.FinancialSummary{BySource: map[types.SourceType]types.SourceSummary{}}, nil
}

func (f *fakeContributions) Contribution(_ context.Context, id string) (*types.ContributionDetail, error) {
	if id != "contrib-bob" {
		return nil, types.ErrNotFound
	}
	return &types.ContributionDetail{Contribution: types.Contribution{
		ID:     id,
		UserID: "bob",
		Amount: decimal.NewFromInt(50),
		Status: types.ContributionStatusCompleted,
	}}, nil
}

func TestCreateContributionWithReceipt(t *testing.T) {
	contributions := &fakeContributions{}
	h := newHarness(t, Deps{Contributions: contributions})

	rec := h.sendMultipart(http.MethodPost, "/api/contributions", "treasurer", map[string][]string{
		"user_id":        {"alice"},
		"amount":         {"75.50"},
		"payment_date":   {"2024-02-10"},
		"payment_method": {"mobile_money"},
		"source_type":    {"other"},
		"reference":      {"MM-4411"},
	}, upload{field: "receipt", name: "Receipt.PDF", body: "%PDF-1.4 receipt"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, contributions.created, 1)
	created := contributions.created[0]
	assert.Equal(t, "alice", created.UserID)
	assert.Equal(t, "treasurer", created.CreatedBy)
	assert.True(t, created.Amount.Equal(decimal.RequireFromString("75.5")))
	assert.Nil(t, created.SourceID)

	require.NotNil(t, created.ReceiptPath)
	assert.True(t, strings.HasPrefix(*created.ReceiptPath, "receipts/"), *created.ReceiptPath)
	assert.True(t, strings.HasSuffix(*created.ReceiptPath, ".pdf"), *created.ReceiptPath)
	assert.FileExists(t, filepath.Join(h.root, filepath.FromSlash(*created.ReceiptPath)))

	assert.Equal(t, []types.AuditAction{types.AuditCreate}, h.audit.actions())
}

func TestCreateContributionValidation(t *testing.T) {
	contributions := &fakeContributions{}
	h := newHarness(t, Deps{Contributions: contributions})

	rec := h.do(http.MethodPost, "/api/contributions", "treasurer", map[string]any{
		"user_id":        "alice",
		"amount":         "-5",
		"payment_date":   "2024-02-10",
		"payment_method": "cheque",
		"source_type":    "event",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody[errorBody](t, rec)
	assert.Contains(t, body.Fields, "amount")
	assert.Contains(t, body.Fields, "payment_method")
	assert.Contains(t, body.Fields, "source_id")
	assert.Empty(t, contributions.created)
}

func TestCreateContributionRequiresRole(t *testing.T) {
	contributions := &fakeContributions{}
	h := newHarness(t, Deps{Contributions: contributions})

	rec := h.do(http.MethodPost, "/api/contributions", "secretary", map[string]any{
		"user_id":        "alice",
		"amount":         "10",
		"payment_date":   "2024-02-10",
		"payment_method": "cash",
		"source_type":    "other",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, contributions.created)
}

func TestContributionsScopedToMember(t *testing.T) {
	contributions := &fakeContributions{}
	h := newHarness(t, Deps{Contributions: contributions})

	rec := h.do(http.MethodGet, "/api/contributions?user_id=bob", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = h.do(http.MethodGet, "/api/contributions/summary", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/api/contributions?user_id=bob", "treasurer", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, contributions.filters, 3)
	assert.Equal(t, "alice", contributions.filters[0].UserID)
	assert.Equal(t, "alice", contributions.filters[1].UserID)
	assert.Equal(t, "bob", contributions.filters[2].UserID)
}

func TestGetContributionVisibility(t *testing.T) {
	h := newHarness(t, Deps{Contributions: &fakeContributions{}})

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/contributions/contrib-bob", "bob", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/contributions/contrib-bob", "treasurer", nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/contributions/contrib-bob", "alice", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/contributions/nope", "treasurer", nil).Code)
}

func TestUpdateContributionRejectsZeroAmount(t *testing.T) {
	contributions := &fakeContributions{}
	h := newHarness(t, Deps{Contributions: contributions})

	rec := h.do(http.MethodPatch, "/api/contributions/contrib-bob", "treasurer", map[string]any{"amount": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[errorBody](t, rec).Fields, "amount")

	rec = h.do(http.MethodPatch, "/api/contributions/contrib-bob", "treasurer", map[string]any{"payment_method": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[errorBody](t, rec).Fields, "payment_method")

	assert.Empty(t, contributions.updated)
	assert.Empty(t, h.audit.actions())

	rec = h.do(http.MethodPatch, "/api/contributions/contrib-bob", "treasurer", map[string]any{"amount": "12.50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, contributions.updated, 1)
	assert.Equal(t, []string{"amount"}, contributions.updated[0].Columns())
}
