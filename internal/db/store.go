package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/alxandria/ledger/internal/contract"
	"github.com/alxandria/ledger/internal/models"
)

// Store implements contract.Storage on top of a gorm handle. Bind it to a
// transaction to make every write of a request commit or roll back together.
type Store struct {
	posts     *PostRepository
	config    *ConfigRepository
	info      *ContractInfoRepository
	sequences *SequenceRepository
}

var _ contract.Storage = (*Store)(nil)

// NewStore creates a store over db
func NewStore(db *gorm.DB) *Store {
	repo := NewRepository(db)
	return &Store{
		posts:     NewPostRepository(repo),
		config:    NewConfigRepository(repo),
		info:      NewContractInfoRepository(repo),
		sequences: NewSequenceRepository(repo),
	}
}

func (s *Store) LoadConfig(ctx context.Context) (*contract.Config, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil || cfg == nil {
		return nil, err
	}
	return &contract.Config{Admin: cfg.Admin}, nil
}

func (s *Store) SaveConfig(ctx context.Context, cfg contract.Config) error {
	return s.config.Save(ctx, cfg.Admin)
}

func (s *Store) LoadVersion(ctx context.Context) (*contract.ContractVersion, error) {
	info, err := s.info.Get(ctx)
	if err != nil || info == nil {
		return nil, err
	}
	return &contract.ContractVersion{Contract: info.Contract, Version: info.Version}, nil
}

func (s *Store) SaveVersion(ctx context.Context, v contract.ContractVersion) error {
	return s.info.Save(ctx, v.Contract, v.Version)
}

func (s *Store) LoadLastPostID(ctx context.Context) (uint64, error) {
	return s.sequences.Get(ctx, models.SequenceLastPostID)
}

func (s *Store) SaveLastPostID(ctx context.Context, id uint64) error {
	return s.sequences.Set(ctx, models.SequenceLastPostID, id)
}

func (s *Store) LoadPost(ctx context.Context, id uint64) (*contract.Post, error) {
	row, err := s.posts.GetByID(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	post := postFromModel(row)
	return &post, nil
}

func (s *Store) SavePost(ctx context.Context, post *contract.Post) error {
	return s.posts.Save(ctx, postToModel(post))
}

func (s *Store) RangePosts(ctx context.Context, startAfter *uint64, limit int) ([]contract.Post, error) {
	rows, err := s.posts.Range(ctx, startAfter, limit)
	if err != nil {
		return nil, err
	}
	posts := make([]contract.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, postFromModel(&rows[i]))
	}
	return posts, nil
}

func postToModel(p *contract.Post) *models.Post {
	tags := make([]string, len(p.Tags))
	copy(tags, p.Tags)
	return &models.Post{
		PostID:       p.PostID,
		PostTitle:    p.PostTitle,
		ExternalID:   p.ExternalID,
		Text:         p.Text,
		Tags:         tags,
		Author:       p.Author,
		CreationDate: p.CreationDate.UTC(),
		LastEditDate: utcPtr(p.LastEditDate),
		Editor:       p.Editor,
		Deleter:      p.Deleter,
		DeletionDate: utcPtr(p.DeletionDate),
	}
}

func postFromModel(m *models.Post) contract.Post {
	tags := make([]string, len(m.Tags))
	copy(tags, m.Tags)
	return contract.Post{
		PostID:       m.PostID,
		PostTitle:    m.PostTitle,
		ExternalID:   m.ExternalID,
		Text:         m.Text,
		Tags:         tags,
		Author:       m.Author,
		CreationDate: m.CreationDate.UTC(),
		LastEditDate: utcPtr(m.LastEditDate),
		Editor:       m.Editor,
		Deleter:      m.Deleter,
		DeletionDate: utcPtr(m.DeletionDate),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
