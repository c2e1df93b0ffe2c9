package server

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/db"
	"github.com/jonathan/advision/internal/readability"
	"github.com/jonathan/advision/internal/types"
)

// memStore is an in-memory Store. Records are kept in insertion order and
// listed newest first, like the SQL store.
type memStore struct {
	mu    sync.Mutex
	clock time.Time

	users     []*db.User
	projects  []*db.Project
	adCopies  []*db.AdCopy
	scores    []*db.ReadabilityScore
	keywords  []*db.Keyword
	audiences []*db.Audience
	styles    []*db.BrandStyle
	messages  []*db.ChatMessage

	// err, when set, is returned by every call.
	err error
	// failPassword makes UpdatePassword fail.
	failPassword bool
	deletedUsers []uuid.UUID
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{clock: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func newest[T any](items []*T, keep func(*T) bool) []T {
	out := []T{}
	for i := len(items) - 1; i >= 0; i-- {
		if keep(items[i]) {
			out = append(out, *items[i])
		}
	}
	return out
}

func (m *memStore) Ping(context.Context) error { return m.err }

func (m *memStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return slices.ContainsFunc(m.users, func(u *db.User) bool { return u.Email == strings.ToLower(email) }), nil
}

func (m *memStore) CreateUser(_ context.Context, name, email string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return uuid.Nil, m.err
	}
	now := m.tick()
	u := &db.User{ID: uuid.New(), Name: name, Email: strings.ToLower(email), CreatedAt: now, UpdatedAt: now}
	m.users = append(m.users, u)
	return u.ID, nil
}

func (m *memStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedUsers = append(m.deletedUsers, id)
	m.users = slices.DeleteFunc(m.users, func(u *db.User) bool { return u.ID == id })
	return nil
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdatePassword(_ context.Context, userID uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.failPassword {
		return errors.New("update failed")
	}
	for _, u := range m.users {
		if u.ID == userID {
			u.PasswordHash, u.PasswordSet, u.UpdatedAt = hash, true, m.tick()
			return nil
		}
	}
	return errors.New("user not found")
}

func (m *memStore) CreateProject(_ context.Context, userID uuid.UUID, name string, brief types.ProjectBrief) (*db.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p := &db.Project{ID: uuid.New(), UserID: userID, Name: name, ProjectBrief: brief, CreatedAt: m.tick()}
	m.projects = append(m.projects, p)
	c := *p
	return &c, nil
}

func (m *memStore) GetProject(_ context.Context, projectID, userID uuid.UUID) (*db.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.projects {
		if p.ID == projectID && p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListProjects(_ context.Context, userID uuid.UUID) ([]db.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newest(m.projects, func(p *db.Project) bool { return p.UserID == userID }), m.err
}

func (m *memStore) DeleteProject(_ context.Context, projectID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	before := len(m.projects)
	m.projects = slices.DeleteFunc(m.projects, func(p *db.Project) bool { return p.ID == projectID && p.UserID == userID })
	if len(m.projects) == before {
		return false, nil
	}
	m.adCopies = slices.DeleteFunc(m.adCopies, func(a *db.AdCopy) bool { return a.ProjectID == projectID })
	m.keywords = slices.DeleteFunc(m.keywords, func(k *db.Keyword) bool { return k.ProjectID == projectID })
	m.audiences = slices.DeleteFunc(m.audiences, func(a *db.Audience) bool { return a.ProjectID == projectID })
	m.styles = slices.DeleteFunc(m.styles, func(s *db.BrandStyle) bool { return s.ProjectID == projectID })
	return true, nil
}

func (m *memStore) CreateAdCopies(_ context.Context, projectID, userID uuid.UUID, contents []string, tone string) ([]db.AdCopy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]db.AdCopy, 0, len(contents))
	for _, content := range contents {
		a := &db.AdCopy{ID: uuid.New(), ProjectID: projectID, UserID: userID, Content: content, Tone: tone, CreatedAt: m.tick()}
		m.adCopies = append(m.adCopies, a)
		out = append(out, *a)
	}
	return out, nil
}

func (m *memStore) GetAdCopy(_ context.Context, adCopyID, userID uuid.UUID) (*db.AdCopy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.adCopies {
		if a.ID == adCopyID && a.UserID == userID {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListAdCopies(_ context.Context, projectID, userID uuid.UUID) ([]db.AdCopy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	copies := newest(m.adCopies, func(a *db.AdCopy) bool { return a.ProjectID == projectID && a.UserID == userID })
	for i := range copies {
		copies[i].Readability = m.latestScore(copies[i].ID, userID)
	}
	return copies, nil
}

func (m *memStore) DeleteAdCopy(_ context.Context, adCopyID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.adCopies)
	m.adCopies = slices.DeleteFunc(m.adCopies, func(a *db.AdCopy) bool { return a.ID == adCopyID && a.UserID == userID })
	if len(m.adCopies) == before {
		return false, m.err
	}
	m.scores = slices.DeleteFunc(m.scores, func(s *db.ReadabilityScore) bool { return s.AdCopyID == adCopyID })
	return true, m.err
}

func (m *memStore) SaveReadability(_ context.Context, adCopyID, userID uuid.UUID, s readability.Snapshot) (*db.ReadabilityScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	score := &db.ReadabilityScore{ID: uuid.New(), AdCopyID: adCopyID, UserID: userID, Snapshot: s, CreatedAt: m.tick()}
	m.scores = append(m.scores, score)
	c := *score
	return &c, nil
}

func (m *memStore) latestScore(adCopyID, userID uuid.UUID) *db.ReadabilityScore {
	for i := len(m.scores) - 1; i >= 0; i-- {
		if s := m.scores[i]; s.AdCopyID == adCopyID && s.UserID == userID {
			c := *s
			return &c
		}
	}
	return nil
}

func (m *memStore) LatestReadability(_ context.Context, adCopyID, userID uuid.UUID) (*db.ReadabilityScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.latestScore(adCopyID, userID), nil
}

func (m *memStore) DeleteReadability(_ context.Context, scoreID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.scores)
	m.scores = slices.DeleteFunc(m.scores, func(s *db.ReadabilityScore) bool { return s.ID == scoreID && s.UserID == userID })
	return len(m.scores) < before, m.err
}

func (m *memStore) CreateKeywords(_ context.Context, projectID, userID uuid.UUID, keywords []types.KeywordSuggestion) ([]db.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]db.Keyword, 0, len(keywords))
	for _, k := range keywords {
		rec := &db.Keyword{ID: uuid.New(), ProjectID: projectID, UserID: userID, KeywordSuggestion: k, CreatedAt: m.tick()}
		m.keywords = append(m.keywords, rec)
		out = append(out, *rec)
	}
	return out, nil
}

func (m *memStore) ListKeywords(_ context.Context, projectID, userID uuid.UUID) ([]db.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newest(m.keywords, func(k *db.Keyword) bool { return k.ProjectID == projectID && k.UserID == userID }), m.err
}

func (m *memStore) DeleteKeyword(_ context.Context, keywordID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.keywords)
	m.keywords = slices.DeleteFunc(m.keywords, func(k *db.Keyword) bool { return k.ID == keywordID && k.UserID == userID })
	return len(m.keywords) < before, m.err
}

func (m *memStore) CreateAudiences(_ context.Context, projectID, userID uuid.UUID, segments []types.AudienceSegment) ([]db.Audience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]db.Audience, 0, len(segments))
	for _, seg := range segments {
		rec := &db.Audience{ID: uuid.New(), ProjectID: projectID, UserID: userID, AudienceSegment: seg, CreatedAt: m.tick()}
		m.audiences = append(m.audiences, rec)
		out = append(out, *rec)
	}
	return out, nil
}

func (m *memStore) ListAudiences(_ context.Context, projectID, userID uuid.UUID) ([]db.Audience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newest(m.audiences, func(a *db.Audience) bool { return a.ProjectID == projectID && a.UserID == userID }), m.err
}

func (m *memStore) DeleteAudience(_ context.Context, audienceID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.audiences)
	m.audiences = slices.DeleteFunc(m.audiences, func(a *db.Audience) bool { return a.ID == audienceID && a.UserID == userID })
	return len(m.audiences) < before, m.err
}

func (m *memStore) CreateBrandStyle(_ context.Context, projectID, userID uuid.UUID, brandName string, colors []string, font string) (*db.BrandStyle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s := &db.BrandStyle{ID: uuid.New(), ProjectID: projectID, UserID: userID, BrandName: brandName,
		Colors: db.StringArray(colors), Font: font, CreatedAt: m.tick()}
	m.styles = append(m.styles, s)
	c := *s
	return &c, nil
}

func (m *memStore) ListBrandStyles(_ context.Context, projectID, userID uuid.UUID) ([]db.BrandStyle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newest(m.styles, func(s *db.BrandStyle) bool { return s.ProjectID == projectID && s.UserID == userID }), m.err
}

func (m *memStore) DeleteBrandStyle(_ context.Context, styleID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.styles)
	m.styles = slices.DeleteFunc(m.styles, func(s *db.BrandStyle) bool { return s.ID == styleID && s.UserID == userID })
	return len(m.styles) < before, m.err
}

func (m *memStore) AppendChatMessage(_ context.Context, conversationID, userID uuid.UUID, role, content, productName string) (*db.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	msg := &db.ChatMessage{ID: uuid.New(), ConversationID: conversationID, UserID: userID, Role: role,
		Content: content, ProductName: productName, CreatedAt: m.tick()}
	m.messages = append(m.messages, msg)
	c := *msg
	return &c, nil
}

func (m *memStore) ListChatMessages(_ context.Context, conversationID, userID uuid.UUID) ([]db.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.ChatMessage{}
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID && msg.UserID == userID {
			out = append(out, *msg)
		}
	}
	return out, m.err
}

func (m *memStore) ListConversations(_ context.Context, userID uuid.UUID) ([]db.ConversationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	index := map[uuid.UUID]int{}
	var out []db.ConversationSummary
	for _, msg := range m.messages {
		if msg.UserID != userID {
			continue
		}
		i, ok := index[msg.ConversationID]
		if !ok {
			index[msg.ConversationID] = len(out)
			out = append(out, db.ConversationSummary{ConversationID: msg.ConversationID,
				ProductName: msg.ProductName, FirstMessage: msg.Content})
			i = len(out) - 1
		}
		out[i].MessageCount++
		out[i].LastMessageAt = msg.CreatedAt
	}
	slices.Reverse(out)
	return out, m.err
}

func (m *memStore) DeleteConversation(_ context.Context, conversationID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.messages)
	m.messages = slices.DeleteFunc(m.messages, func(msg *db.ChatMessage) bool {
		return msg.ConversationID == conversationID && msg.UserID == userID
	})
	return len(m.messages) < before, m.err
}
