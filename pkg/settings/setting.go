package settings

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/owlpost/notifykit/pkg/registry"
)

// Setting is a per-(user, organization, type) override of the type's
// delivery defaults. Web and Email are tri-state: nil means "use the type's
// default".
type Setting struct {
	ID             uuid.UUID `json:"id"`
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Type           string    `json:"type"`
	Web            *bool     `json:"web,omitempty"`
	Email          *bool     `json:"email,omitempty"`
	Deleted        bool      `json:"deleted"`
}

// UniqueKey identifies the setting row; (organization, type, user) is unique.
func (s Setting) UniqueKey() string {
	return fmt.Sprintf("%s-%s-%s", s.OrganizationID, s.Type, s.UserID)
}

// EffectiveWeb returns the effective in-app delivery flag: the stored
// override when set, the type's default otherwise.
func (s Setting) EffectiveWeb(reg *registry.Registry) (bool, error) {
	if s.Web != nil {
		return *s.Web, nil
	}
	cfg, err := reg.Get(s.Type)
	if err != nil {
		return false, err
	}
	return cfg.WebEnabled(), nil
}

// EffectiveEmail returns the effective email delivery flag. Email delivery
// additionally requires web delivery to be enabled.
func (s Setting) EffectiveEmail(reg *registry.Registry) (bool, error) {
	web, err := s.EffectiveWeb(reg)
	if err != nil {
		return false, err
	}
	if !web {
		return false, nil
	}
	if s.Email != nil {
		return *s.Email, nil
	}
	cfg, err := reg.Get(s.Type)
	if err != nil {
		return false, err
	}
	return cfg.EmailEnabled(), nil
}

// Normalize is the validation-time rule: an override equal to the type's
// default is cleared back to "unset", so storage only records real
// overrides and effective-default semantics stay cheap.
func (s *Setting) Normalize(reg *registry.Registry) error {
	cfg, err := reg.Get(s.Type)
	if err != nil {
		return err
	}
	if s.Web != nil && *s.Web == cfg.WebEnabled() {
		s.Web = nil
	}
	if s.Email != nil && *s.Email == cfg.EmailEnabled() {
		s.Email = nil
	}
	return nil
}

// ApplySaveRules enforces the save-time invariant: when the effective web
// value is false, email is forced false regardless of its stored value.
// Call after Normalize, immediately before persisting.
func (s *Setting) ApplySaveRules(reg *registry.Registry) error {
	web, err := s.EffectiveWeb(reg)
	if err != nil {
		return err
	}
	if !web {
		off := false
		s.Email = &off
	}
	return nil
}
