package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"gocatalog/internal/common"
	"gocatalog/internal/dbpostgres"
)

// fakeItemStore evaluates ItemQuery plans in memory with the same filter and
// ordering rules the SQL uses.
type fakeItemStore struct {
	mu       sync.Mutex
	items    map[string]dbpostgres.Item
	failWith error
	block    bool
	queries  []dbpostgres.ItemQuery
}

func newFakeItemStore(items ...dbpostgres.Item) *fakeItemStore {
	s := &fakeItemStore{items: make(map[string]dbpostgres.Item)}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func (s *fakeItemStore) QueryItems(ctx context.Context, q dbpostgres.ItemQuery) ([]dbpostgres.Item, int64, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	block, failWith := s.block, s.failWith
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, 0, ctx.Err()
	}
	if failWith != nil {
		return nil, 0, failWith
	}

	s.mu.Lock()
	var matched []dbpostgres.Item
	for _, it := range s.items {
		if matches(it, q) {
			matched = append(matched, it)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if c := compareItems(matched[i], matched[j], q.OrderBy); c != 0 {
			return c < 0
		}
		return matched[i].ID < matched[j].ID
	})

	count := int64(len(matched))
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, count, nil
}

func (s *fakeItemStore) GetItemByID(ctx context.Context, id string) (*dbpostgres.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &it, nil
}

func (s *fakeItemStore) CreateItem(ctx context.Context, item *dbpostgres.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = *item
	return nil
}

func (s *fakeItemStore) UpdateItem(ctx context.Context, id string, updates map[string]interface{}) (*dbpostgres.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "title":
			title := v.(string)
			it.Title = &title
		case "body":
			body := v.(string)
			it.Body = &body
		case "preview":
			it.Preview = v.(*string)
		case "hash":
			it.Hash = nil
			if hash, ok := v.(string); ok {
				it.Hash = &hash
			}
		case "tags":
			it.Tags = v.(pq.StringArray)
		}
	}
	s.items[id] = it
	return &it, nil
}

func (s *fakeItemStore) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *fakeItemStore) IncrementReaction(ctx context.Context, id string, kind common.ReactionKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return common.ErrNotFound
	}
	r := it.Reactions.Data()
	switch kind {
	case common.ReactionHeart:
		r.Heart++
	case common.ReactionEyes:
		r.Eyes++
	case common.ReactionGrinning:
		r.Grinning++
	case common.ReactionBird:
		r.Bird++
	}
	it.Reactions = datatypes.NewJSONType(r)
	s.items[id] = it
	return nil
}

func matches(it dbpostgres.Item, q dbpostgres.ItemQuery) bool {
	if q.Type != "" && it.Type != q.Type {
		return false
	}
	if q.FolderID != "" && (it.FolderID == nil || *it.FolderID != q.FolderID) {
		return false
	}
	for _, tag := range q.Tags {
		if !it.HasTag(tag) {
			return false
		}
	}
	if q.ExcludeTag != "" && it.HasTag(q.ExcludeTag) {
		return false
	}
	if q.Search != "" && !searchMatches(it, q.Search) {
		return false
	}
	return true
}

// searchMatches understands plain terms and -exclusions, which is all the
// tests need from websearch syntax.
func searchMatches(it dbpostgres.Item, search string) bool {
	var text string
	if it.Title != nil {
		text += *it.Title + " "
	}
	if it.Body != nil {
		text += *it.Body
	}
	text = strings.ToLower(text)

	for _, term := range strings.Fields(strings.ToLower(search)) {
		if strings.HasPrefix(term, "-") {
			if strings.Contains(text, term[1:]) {
				return false
			}
			continue
		}
		if !strings.Contains(text, strings.Trim(term, `"`)) {
			return false
		}
	}
	return true
}

func compareItems(a, b dbpostgres.Item, order []dbpostgres.OrderBy) int {
	for _, o := range order {
		if c := compareColumn(a, b, o); c != 0 {
			return c
		}
	}
	return 0
}

func compareColumn(a, b dbpostgres.Item, o dbpostgres.OrderBy) int {
	av, aNull := columnValue(a, o.Column)
	bv, bNull := columnValue(b, o.Column)
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		if o.NullsFirst {
			return -1
		}
		return 1
	case bNull:
		if o.NullsFirst {
			return 1
		}
		return -1
	}

	var c int
	switch x := av.(type) {
	case bool:
		y := bv.(bool)
		if x != y {
			c = -1
			if x {
				c = 1
			}
		}
	case string:
		c = strings.Compare(x, bv.(string))
	case time.Time:
		c = x.Compare(bv.(time.Time))
	}
	if o.Desc {
		c = -c
	}
	return c
}

func columnValue(it dbpostgres.Item, column string) (interface{}, bool) {
	switch column {
	case "is_pinned":
		return it.IsPinned, false
	case "title":
		if it.Title == nil {
			return nil, true
		}
		return *it.Title, false
	case "taken_at":
		if it.TakenAt == nil {
			return nil, true
		}
		return *it.TakenAt, false
	case "created_at":
		return it.CreatedAt, false
	}
	return nil, true
}

// fakeFolderStore keeps folders in a map keyed by id.
type fakeFolderStore struct {
	mu      sync.Mutex
	folders map[string]dbpostgres.Folder
}

func newFakeFolderStore(folders ...dbpostgres.Folder) *fakeFolderStore {
	s := &fakeFolderStore{folders: make(map[string]dbpostgres.Folder)}
	for _, f := range folders {
		s.folders[f.ID] = f
	}
	return s
}

func (s *fakeFolderStore) ListFolders(ctx context.Context) ([]dbpostgres.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dbpostgres.Folder, 0, len(s.folders))
	for _, f := range s.folders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *fakeFolderStore) GetFolderByID(ctx context.Context, id string) (*dbpostgres.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.folders[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &f, nil
}

func (s *fakeFolderStore) CreateFolder(ctx context.Context, folder *dbpostgres.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[folder.ID] = *folder
	return nil
}

// subtree returns the ids below id, following parent links.
func (s *fakeFolderStore) subtree(id string) []string {
	var out []string
	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for childID, f := range s.folders {
			if f.ParentID != nil && *f.ParentID == current {
				out = append(out, childID)
				queue = append(queue, childID)
			}
		}
	}
	return out
}

func (s *fakeFolderStore) UpdateFolder(ctx context.Context, folder *dbpostgres.Folder, oldPath string, levelDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[folder.ID] = *folder
	if oldPath == folder.Path && levelDelta == 0 {
		return nil
	}
	for _, id := range s.subtree(folder.ID) {
		f := s.folders[id]
		f.Path = folder.Path + f.Path[len(oldPath):]
		f.Level += levelDelta
		s.folders[id] = f
	}
	return nil
}

func (s *fakeFolderStore) DeleteFolder(ctx context.Context, folder *dbpostgres.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.subtree(folder.ID) {
		f := s.folders[id]
		f.Path = f.Path[len(folder.Path)+1:]
		f.Level -= folder.Level + 1
		if f.ParentID != nil && *f.ParentID == folder.ID {
			f.ParentID = nil
		}
		s.folders[id] = f
	}
	delete(s.folders, folder.ID)
	return nil
}
