package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/lib/pq"

	"gocatalog/internal/common"
	"gocatalog/internal/dbpostgres"
)

// --------- FOLDERS ---------

// ListFolders returns every folder ordered by path, so parents precede
// their children.
func (s *Service) ListFolders(ctx context.Context) ([]dbpostgres.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	folders, err := s.folders.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	if folders == nil {
		folders = []dbpostgres.Folder{}
	}
	return folders, nil
}

func (s *Service) CreateFolder(ctx context.Context, in FolderInput) (*dbpostgres.Folder, error) {
	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}
	if err := common.ValidateStruct(in); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	folderSlug := slug.Make(name)
	if folderSlug == "" {
		return nil, fmt.Errorf("%w: name must contain letters or digits", common.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now()
	folder := &dbpostgres.Folder{
		ID:           uuid.NewString(),
		Name:         name,
		Slug:         folderSlug,
		Path:         folderSlug,
		ContentTypes: contentTypeArray(in.ContentTypes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if in.ParentID != nil && *in.ParentID != "" {
		parent, err := s.parentFolder(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		folder.ParentID = &parent.ID
		folder.Path = parent.Path + "/" + folderSlug
		folder.Level = parent.Level + 1
	}

	if err := s.folders.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// UpdateFolder renames, moves or retypes a folder. Moving re-derives the
// path and level of the folder and all of its descendants.
func (s *Service) UpdateFolder(ctx context.Context, id string, patch FolderPatch) (*dbpostgres.Folder, error) {
	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}
	if err := common.ValidateStruct(patch); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	folder, err := s.folders.GetFolderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldPath, oldLevel := folder.Path, folder.Level

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		folderSlug := slug.Make(name)
		if folderSlug == "" {
			return nil, fmt.Errorf("%w: name must contain letters or digits", common.ErrInvalidInput)
		}
		folder.Name = name
		folder.Slug = folderSlug
	}
	if patch.ContentTypes != nil {
		folder.ContentTypes = contentTypeArray(*patch.ContentTypes)
	}
	if patch.ParentID != nil {
		if *patch.ParentID == "" {
			folder.ParentID = nil
		} else {
			folder.ParentID = patch.ParentID
		}
	}

	folder.Path = folder.Slug
	folder.Level = 0
	if folder.ParentID != nil {
		if *folder.ParentID == folder.ID {
			return nil, fmt.Errorf("%w: folder cannot be its own parent", common.ErrConflict)
		}
		parent, err := s.parentFolder(ctx, *folder.ParentID)
		if err != nil {
			return nil, err
		}
		if err := s.checkNotDescendant(ctx, folder.ID, parent); err != nil {
			return nil, err
		}
		folder.Path = parent.Path + "/" + folder.Slug
		folder.Level = parent.Level + 1
	}
	folder.UpdatedAt = time.Now()

	if err := s.folders.UpdateFolder(ctx, folder, oldPath, folder.Level-oldLevel); err != nil {
		return nil, err
	}
	return folder, nil
}

// DeleteFolder removes the folder. Its items and child folders are kept.
func (s *Service) DeleteFolder(ctx context.Context, id string) error {
	if err := s.requireSession(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	folder, err := s.folders.GetFolderByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.folders.DeleteFolder(ctx, folder)
}

func (s *Service) parentFolder(ctx context.Context, id string) (*dbpostgres.Folder, error) {
	parent, err := s.folders.GetFolderByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("%w: parent folder %s does not exist", common.ErrInvalidInput, id)
	}
	return parent, err
}

// checkNotDescendant walks up from parent and fails when it reaches id.
func (s *Service) checkNotDescendant(ctx context.Context, id string, parent *dbpostgres.Folder) error {
	seen := map[string]bool{}
	for current := parent; current != nil; {
		if current.ID == id {
			return fmt.Errorf("%w: folder cannot be moved under its own descendant", common.ErrConflict)
		}
		if current.ParentID == nil || seen[current.ID] {
			return nil
		}
		seen[current.ID] = true

		next, err := s.folders.GetFolderByID(ctx, *current.ParentID)
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

func contentTypeArray(types []string) pq.StringArray {
	out := pq.StringArray{}
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
