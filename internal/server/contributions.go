package server

import (
	"net/http"

	"familyhub/internal/storage"
	"familyhub/internal/utils"
	"familyhub/pkg/types"
)

// Members without the contribution role only ever see their own records.
func (s *Service) scopeContributions(actor *types.Actor, filter *types.ContributionFilter) {
	if s.policy.Authorize(actor, entityContributions) != nil {
		filter.UserID = actor.UserID
	}
}

func (s *Service) handleListContributions(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var filter types.ContributionFilter
	page, err := decodeQuery(r, &filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.scopeContributions(actor, &filter)

	contributions, err := s.deps.Contributions.Contributions(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, contributions)
}

func (s *Service) handleContributionSummary(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var filter types.ContributionFilter
	if _, err := decodeQuery(r, &filter); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.scopeContributions(actor, &filter)

	summary, err := s.deps.Contributions.Summary(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Service) contribution(r *http.Request, actor *types.Actor) (*types.ContributionDetail, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}

	contribution, err := s.deps.Contributions.Contribution(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if contribution.UserID != actor.UserID {
		if err := s.policy.Authorize(actor, entityContributions); err != nil {
			return nil, err
		}
	}

	return contribution, nil
}

func (s *Service) handleGetContribution(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	contribution, err := s.contribution(r, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contribution)
}

func (s *Service) handleCreateContribution(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var input types.ContributionInput
	if err := s.decodeInput(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityContributions); err != nil {
		s.writeError(w, r, err)
		return
	}

	receipt, err := s.stageFile(r, "receipt")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer s.deps.Files.Discard(receipt)

	contribution := &types.Contribution{
		UserID:        input.UserID,
		Amount:        input.Amount,
		PaymentDate:   input.PaymentDate,
		PaymentMethod: input.PaymentMethod,
		Status:        input.Status,
		SourceType:    input.SourceType,
		SourceID:      utils.NullableString(input.SourceID),
		Reference:     utils.NullableString(input.Reference),
		Notes:         utils.NullableString(input.Notes),
		CreatedBy:     actor.UserID,
	}
	if input.SourceType == types.SourceTypeOther {
		contribution.SourceID = nil
	}

	if receipt != nil {
		key, err := s.deps.Files.Commit(r.Context(), receipt, storage.FolderReceipts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		contribution.ReceiptPath = &key
	}

	created, err := s.deps.Contributions.CreateContribution(r.Context(), contribution)
	if err != nil {
		if contribution.ReceiptPath != nil {
			s.deps.Files.PurgeQuietly(r.Context(), *contribution.ReceiptPath)
		}
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditCreate, actor, targetContribution, created.ID, map[string]any{
		"user_id":     created.UserID,
		"amount":      created.Amount.String(),
		"source_type": created.SourceType,
		"receipt":     created.ReceiptPath != nil,
	})

	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateContribution applies a patch and, for multipart requests, swaps
// the receipt in the same row update.
func (s *Service) handleUpdateContribution(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch types.ContributionPatch
	if err := s.decodeInput(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityContributions); err != nil {
		s.writeError(w, r, err)
		return
	}

	receipt, err := s.stageFile(r, "receipt")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer s.deps.Files.Discard(receipt)

	changes := utils.ChangesFromPatch(patch)

	var updated *types.Contribution
	if receipt == nil {
		updated, err = s.deps.Contributions.UpdateContribution(r.Context(), id, changes)
	} else {
		var current *types.ContributionDetail
		current, err = s.deps.Contributions.Contribution(r.Context(), id)
		if err == nil {
			_, err = s.deps.Files.Replace(r.Context(), utils.PtrString(current.ReceiptPath), receipt, storage.FolderReceipts, func(key string) error {
				changes = changes.With("receipt_path", key)
				var perr error
				updated, perr = s.deps.Contributions.UpdateContribution(r.Context(), id, changes)
				return perr
			})
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordUpdate(r, actor, targetContribution, updated.ID, changes)

	writeJSON(w, http.StatusOK, updated)
}

func (s *Service) handleDeleteContribution(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityContributions); err != nil {
		s.writeError(w, r, err)
		return
	}

	current, err := s.deps.Contributions.Contribution(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ok, err := s.deps.Contributions.DeleteContribution(r.Context(), id)
	if err == nil {
		err = deleted(ok)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.deps.Files.PurgeQuietly(r.Context(), utils.PtrString(current.ReceiptPath))

	s.record(r, types.AuditDelete, actor, targetContribution, id, map[string]any{
		"user_id": current.UserID,
		"amount":  current.Amount.String(),
	})

	noContent(w)
}

func (s *Service) handleDownloadReceipt(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	contribution, err := s.contribution(r, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if contribution.ReceiptPath == nil {
		s.writeError(w, r, types.ErrNotFound)
		return
	}

	name := "receipt-" + contribution.PaymentDate.String()
	s.download(w, r, actor, *contribution.ReceiptPath, name, "", targetContribution, contribution.ID)
}
