package newbie

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Newbie is the stored registration as returned by the database: the
// safe-to-echo subset only. Motivation, hobbies and notes are written but
// never read back out through the API.
type Newbie struct {
	ID        string    `json:"id"`
	Nom       string    `json:"nom"`
	Prenom    string    `json:"prenom"`
	Num       *string   `json:"num"`
	Email     string    `json:"email"`
	Instagram *string   `json:"instagram"`
	Discord   *string   `json:"discord"`
	Classe    string    `json:"classe"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// validation failures (caller errors)
var ErrMissingField = errors.New("required field missing")
var ErrInvalidEmail = errors.New("invalid email format")
var ErrInvalidCohort = errors.New("invalid classe")

// persistence failures, translated from driver errors at the repo boundary
var ErrDuplicateEmail = errors.New("registration already exists")
var ErrSchemaMismatch = errors.New("database schema mismatch")
var ErrUnavailable = errors.New("database unavailable")

// Classes is the closed set of accepted cohort labels.
var Classes = []string{"LMK1", "LAC2", "LAC3", "LMI1", "LMI2", "LMI3", "LCF1", "LCF2"}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type SignupRequest struct {
	Nom             string  `json:"nom" binding:"required"`
	Prenom          string  `json:"prenom" binding:"required"`
	Num             *string `json:"num"`
	Email           string  `json:"email" binding:"required"`
	Instagram       *string `json:"instagram"`
	Discord         *string `json:"discord"`
	Classe          string  `json:"classe" binding:"required"`
	Hobbies         *string `json:"hobbies"`
	Motivation      string  `json:"motivation" binding:"required"`
	AdditionalNotes *string `json:"additional_notes"`
}

// Validate checks the request against the registration contract. It is a pure
// function: no trimming is persisted here, Normalize does that afterwards.
func (r SignupRequest) Validate() error {
	for _, v := range []string{r.Nom, r.Prenom, r.Email, r.Classe, r.Motivation} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingField
		}
	}

	if !emailRe.MatchString(strings.TrimSpace(r.Email)) {
		return ErrInvalidEmail
	}

	if !ValidClasse(strings.TrimSpace(r.Classe)) {
		return ErrInvalidCohort
	}

	return nil
}

// Normalize returns the canonical form of a validated request: all text
// trimmed, email lowercased, empty optionals collapsed to nil so the store
// records a true NULL instead of an empty string.
func (r SignupRequest) Normalize() SignupRequest {
	return SignupRequest{
		Nom:             strings.TrimSpace(r.Nom),
		Prenom:          strings.TrimSpace(r.Prenom),
		Num:             normalizeOptional(r.Num),
		Email:           strings.ToLower(strings.TrimSpace(r.Email)),
		Instagram:       normalizeOptional(r.Instagram),
		Discord:         normalizeOptional(r.Discord),
		Classe:          strings.TrimSpace(r.Classe),
		Hobbies:         normalizeOptional(r.Hobbies),
		Motivation:      strings.TrimSpace(r.Motivation),
		AdditionalNotes: normalizeOptional(r.AdditionalNotes),
	}
}

func ValidClasse(classe string) bool {
	for _, c := range Classes {
		if classe == c {
			return true
		}
	}

	return false
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*v)

	if trimmed == "" {
		return nil
	}

	return &trimmed
}
