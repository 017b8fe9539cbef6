package dbpostgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"gocatalog/internal/common"
)

type FolderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) ListFolders(ctx context.Context) ([]Folder, error) {
	var folders []Folder
	if err := r.db.WithContext(ctx).Order("path ASC").Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

func (r *FolderRepository) GetFolderByID(ctx context.Context, id string) (*Folder, error) {
	var folder Folder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&folder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &folder, nil
}

func (r *FolderRepository) CreateFolder(ctx context.Context, folder *Folder) error {
	if err := r.db.WithContext(ctx).Create(folder).Error; err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// subtreeCTE selects every folder below the one bound to its placeholder,
// following parent_id links rather than paths, which are not unique.
const subtreeCTE = `WITH RECURSIVE subtree AS (
	SELECT id FROM folders WHERE parent_id = ?
	UNION ALL
	SELECT f.id FROM folders f JOIN subtree s ON f.parent_id = s.id
) `

// UpdateFolder saves folder and, when its path moved from oldPath, rewrites
// the path and level of every descendant in the same transaction.
func (r *FolderRepository) UpdateFolder(ctx context.Context, folder *Folder, oldPath string, levelDelta int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(folder).Error; err != nil {
			return fmt.Errorf("update folder: %w", err)
		}
		if oldPath == folder.Path && levelDelta == 0 {
			return nil
		}
		err := tx.Exec(subtreeCTE+
			`UPDATE folders SET path = ? || substr(path, ?), level = level + ? WHERE id IN (SELECT id FROM subtree)`,
			folder.ID, folder.Path, len(oldPath)+1, levelDelta).Error
		if err != nil {
			return fmt.Errorf("move descendants: %w", err)
		}
		return nil
	})
}

// DeleteFolder removes folder. Items and direct children are detached by the
// foreign keys; descendant paths are rewritten first so the children become roots.
func (r *FolderRepository) DeleteFolder(ctx context.Context, folder *Folder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(subtreeCTE+
			`UPDATE folders SET path = substr(path, ?), level = level - ? WHERE id IN (SELECT id FROM subtree)`,
			folder.ID, len(folder.Path)+2, folder.Level+1).Error
		if err != nil {
			return fmt.Errorf("detach descendants: %w", err)
		}
		if err := tx.Where("id = ?", folder.ID).Delete(&Folder{}).Error; err != nil {
			return fmt.Errorf("delete folder: %w", err)
		}
		return nil
	})
}
