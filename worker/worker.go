// Package worker manages labor identities. A worker is derived 1:1
// from the platform user behind the session: the id is a deterministic
// function of the platform user id, so repeated logins always resolve
// to the same worker. Workers are created lazily on first authenticated
// contact and never hard-deleted.
package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/secondlabor/laborhub/apperr"
	"github.com/secondlabor/laborhub/authctx"
	"github.com/secondlabor/laborhub/config"
	"github.com/secondlabor/laborhub/gateway"
	"github.com/secondlabor/laborhub/store"
	"github.com/secondlabor/laborhub/types"
)

// idNamespace seeds the deterministic worker-id derivation.
var idNamespace = uuid.MustParse("9d2f4b1a-5c83-4e6f-9b37-2a64d01c7e55")

// DeriveID maps a platform user id to a stable worker id.
func DeriveID(secondUserID string) string {
	return uuid.NewSHA1(idNamespace, []byte(secondUserID)).String()
}

// UserInfoFetcher is the slice of the gateway the service needs.
type UserInfoFetcher interface {
	FetchUserInfo(ctx context.Context, override string) (gateway.UserInfo, error)
}

type Service struct {
	store   store.Store
	users   UserInfoFetcher
	catalog *config.Catalog
}

func NewService(st store.Store, users UserInfoFetcher, catalog *config.Catalog) *Service {
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}
	return &Service{store: st, users: users, catalog: catalog}
}

// EnsureFromSession resolves the session's worker, creating it on first
// contact. Requires an authenticated request.
func (s *Service) EnsureFromSession(ctx context.Context) (types.Worker, error) {
	if !authctx.FromContext(ctx).Authenticated() {
		return types.Worker{}, apperr.AuthRequired("no session token present")
	}
	info, err := s.users.FetchUserInfo(ctx, "")
	if err != nil {
		return types.Worker{}, err
	}

	col, err := s.store.Load(ctx)
	if err != nil {
		return types.Worker{}, fmt.Errorf("failed to load collection: %w", err)
	}
	if existing := col.FindWorkerBySecondUser(info.UserID); existing != nil {
		return *existing, nil
	}

	now := time.Now().UTC()
	w := types.Worker{
		ID:           DeriveID(info.UserID),
		SecondUserID: info.UserID,
		Name:         fallbackName(info.Name, info.UserID),
		Avatar:       info.Avatar,
		Specialties:  []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	col.Workers = append(col.Workers, w)
	if err := s.store.Save(ctx, col); err != nil {
		return types.Worker{}, fmt.Errorf("failed to persist worker: %w", err)
	}
	return w, nil
}

// PatchRequest carries profile fields to change; nil means untouched.
type PatchRequest struct {
	Name        *string   `json:"name,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Persona     *string   `json:"persona,omitempty"`
	Avatar      *string   `json:"avatar,omitempty"`
	Specialties *[]string `json:"specialties,omitempty"`
}

// Patch applies a profile update to the session's worker.
func (s *Service) Patch(ctx context.Context, req PatchRequest) (types.Worker, error) {
	w, err := s.EnsureFromSession(ctx)
	if err != nil {
		return types.Worker{}, err
	}

	var specialties []string
	if req.Specialties != nil {
		specialties, err = s.normalizeSpecialties(*req.Specialties)
		if err != nil {
			return types.Worker{}, err
		}
	}

	col, err := s.store.Load(ctx)
	if err != nil {
		return types.Worker{}, fmt.Errorf("failed to load collection: %w", err)
	}
	target := col.FindWorker(w.ID)
	if target == nil {
		return types.Worker{}, apperr.State("worker %s no longer exists", w.ID)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return types.Worker{}, apperr.Validation("worker name must not be empty")
		}
		target.Name = name
	}
	if req.Title != nil {
		target.Title = strings.TrimSpace(*req.Title)
	}
	if req.Persona != nil {
		target.Persona = strings.TrimSpace(*req.Persona)
	}
	if req.Avatar != nil {
		target.Avatar = strings.TrimSpace(*req.Avatar)
	}
	if req.Specialties != nil {
		target.Specialties = specialties
	}
	target.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, col); err != nil {
		return types.Worker{}, fmt.Errorf("failed to persist worker: %w", err)
	}
	return *target, nil
}

// normalizeSpecialties deduplicates while preserving order and checks
// every entry against the catalog or the custom: form.
func (s *Service) normalizeSpecialties(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, raw := range in {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		if !types.IsCustomLaborType(entry) {
			if _, ok := s.catalog.Lookup(entry); !ok {
				return nil, apperr.Validation("unknown specialty %q", entry)
			}
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}
	if len(out) > types.MaxSpecialties {
		return nil, apperr.Validation("at most %d specialties are allowed", types.MaxSpecialties)
	}
	return out, nil
}

func fallbackName(name, userID string) string {
	name = strings.TrimSpace(name)
	if name != "" {
		return name
	}
	return "worker-" + shortID(userID)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
