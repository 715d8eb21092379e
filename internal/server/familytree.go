package server

import (
	"net/http"
	"strings"

	"familyhub/internal/storage"
	"familyhub/internal/utils"
	"familyhub/pkg/types"
)

type treeMemberResponse struct {
	*types.FamilyTreeMember
	Children []*types.FamilyTreeMember `json:"children"`
}

func (s *Service) handleFamilyTree(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	tree, err := s.deps.FamilyTree.Tree(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, tree)
}

func (s *Service) handleGetTreeMember(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	member, err := s.deps.FamilyTree.TreeMember(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	children, err := s.deps.FamilyTree.Children(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if children == nil {
		children = []*types.FamilyTreeMember{}
	}

	writeJSON(w, http.StatusOK, treeMemberResponse{FamilyTreeMember: member, Children: children})
}

func checkTreeDates(birth, death *types.Date) error {
	if birth != nil && death != nil && !birth.IsZero() && !death.IsZero() && death.Before(birth.Time) {
		return types.NewValidationError("death_date", "must not be before birth_date")
	}
	return nil
}

func (s *Service) handleCreateTreeMember(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var input types.FamilyTreeMemberInput
	if err := s.decodeInput(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := checkTreeDates(input.BirthDate, input.DeathDate); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityFamilyTree); err != nil {
		s.writeError(w, r, err)
		return
	}

	photo, err := s.stageFile(r, "photo")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer s.deps.Files.Discard(photo)

	node := &types.FamilyTreeMember{
		FullName:  strings.TrimSpace(input.FullName),
		Gender:    utils.NullableString(input.Gender),
		BirthDate: input.BirthDate,
		DeathDate: input.DeathDate,
		FatherID:  utils.NullableString(input.FatherID),
		MotherID:  utils.NullableString(input.MotherID),
		SpouseID:  utils.NullableString(input.SpouseID),
		ProfileID: utils.NullableString(input.ProfileID),
		Bio:       utils.NullableString(input.Bio),
		CreatedBy: actor.UserID,
	}

	if photo != nil {
		key, err := s.deps.Files.Commit(r.Context(), photo, storage.FolderFamilyPhotos)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		node.PhotoPath = &key
	}

	created, err := s.deps.FamilyTree.CreateTreeMember(r.Context(), node)
	if err != nil {
		if node.PhotoPath != nil {
			s.deps.Files.PurgeQuietly(r.Context(), *node.PhotoPath)
		}
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditCreate, actor, targetTreeMember, created.ID, map[string]any{"full_name": created.FullName})

	writeJSON(w, http.StatusCreated, created)
}

func (s *Service) handleUpdateTreeMember(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch types.FamilyTreeMemberPatch
	if err := s.decodeInput(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	for field, ref := range map[string]types.Optional[string]{
		"father_id": patch.FatherID,
		"mother_id": patch.MotherID,
		"spouse_id": patch.SpouseID,
	} {
		if ref.IsSet() && !ref.IsNull() && ref.Value == id {
			s.writeError(w, r, types.NewValidationError(field, "cannot reference the member itself"))
			return
		}
	}

	if err := s.policy.Authorize(actor, entityFamilyTree); err != nil {
		s.writeError(w, r, err)
		return
	}

	// the date order can only be checked against the stored row
	var current *types.FamilyTreeMember
	if (patch.BirthDate.IsSet() && !patch.BirthDate.IsNull()) || (patch.DeathDate.IsSet() && !patch.DeathDate.IsNull()) {
		current, err = s.deps.FamilyTree.TreeMember(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		birth, death := current.BirthDate, current.DeathDate
		if patch.BirthDate.IsSet() {
			birth = nil
			if !patch.BirthDate.IsNull() {
				birth = &patch.BirthDate.Value
			}
		}
		if patch.DeathDate.IsSet() {
			death = nil
			if !patch.DeathDate.IsNull() {
				death = &patch.DeathDate.Value
			}
		}
		if err := checkTreeDates(birth, death); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	photo, err := s.stageFile(r, "photo")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer s.deps.Files.Discard(photo)

	changes := utils.ChangesFromPatch(patch)

	var node *types.FamilyTreeMember
	if photo == nil {
		node, err = s.deps.FamilyTree.UpdateTreeMember(r.Context(), id, changes)
	} else {
		if current == nil {
			current, err = s.deps.FamilyTree.TreeMember(r.Context(), id)
		}
		if err == nil {
			_, err = s.deps.Files.Replace(r.Context(), utils.PtrString(current.PhotoPath), photo, storage.FolderFamilyPhotos, func(key string) error {
				changes = changes.With("photo_path", key)
				var perr error
				node, perr = s.deps.FamilyTree.UpdateTreeMember(r.Context(), id, changes)
				return perr
			})
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordUpdate(r, actor, targetTreeMember, node.ID, changes)

	writeJSON(w, http.StatusOK, node)
}

func (s *Service) handleDeleteTreeMember(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityFamilyTree); err != nil {
		s.writeError(w, r, err)
		return
	}

	current, err := s.deps.FamilyTree.TreeMember(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ok, err := s.deps.FamilyTree.DeleteTreeMember(r.Context(), id)
	if err == nil {
		err = deleted(ok)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.deps.Files.PurgeQuietly(r.Context(), utils.PtrString(current.PhotoPath))

	s.record(r, types.AuditDelete, actor, targetTreeMember, id, map[string]any{"full_name": current.FullName})

	noContent(w)
}

func (s *Service) handleDownloadTreePhoto(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	node, err := s.deps.FamilyTree.TreeMember(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if node.PhotoPath == nil {
		s.writeError(w, r, types.ErrNotFound)
		return
	}

	s.download(w, r, actor, *node.PhotoPath, node.FullName, "", targetTreeMember, node.ID)
}
