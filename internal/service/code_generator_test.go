package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/repository"
)

var codePattern = regexp.MustCompile(`^[23456789A-HJ-NP-Z]{4}-[23456789A-HJ-NP-Z]{4}-[23456789A-HJ-NP-Z]{4}-[23456789A-HJ-NP-Z]{6}$`)

func TestRandomCodeFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := randomCode()
		if err != nil {
			t.Fatalf("random code failed: %v", err)
		}
		if !codePattern.MatchString(code) {
			t.Fatalf("code does not match expected format: %s", code)
		}
		for _, forbidden := range []string{"0", "1", "I", "O"} {
			if strings.Contains(code, forbidden) {
				t.Fatalf("code contains ambiguous character %s: %s", forbidden, code)
			}
		}
	}
}

type stubGiftCardRepo struct {
	existing map[string]bool
	checks   int
}

func (s *stubGiftCardRepo) Create(ctx context.Context, card *models.GiftCard) error { return nil }
func (s *stubGiftCardRepo) GetByCode(ctx context.Context, code string) (*models.GiftCard, error) {
	return nil, nil
}
func (s *stubGiftCardRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	s.checks++
	// The first few candidates collide, forcing a retry.
	return s.checks <= 2, nil
}
func (s *stubGiftCardRepo) TransitionStatus(ctx context.Context, code, expectedStatus string, updates map[string]interface{}) (int64, error) {
	return 0, nil
}
func (s *stubGiftCardRepo) List(ctx context.Context, filter repository.GiftCardListFilter) ([]models.GiftCard, int64, error) {
	return nil, 0, nil
}

func TestCodeGeneratorRetriesOnCollision(t *testing.T) {
	repo := &stubGiftCardRepo{}
	gen := NewCodeGenerator(repo, 5)
	code, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if code == "" {
		t.Fatalf("expected non-empty code")
	}
	if repo.checks != 3 {
		t.Fatalf("expected 3 existence checks, got: %d", repo.checks)
	}
}

type alwaysCollidingRepo struct {
	stubGiftCardRepo
}

func (s *alwaysCollidingRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return true, nil
}

func TestCodeGeneratorGivesUpAfterMaxAttempts(t *testing.T) {
	gen := NewCodeGenerator(&alwaysCollidingRepo{}, 3)
	if _, err := gen.Generate(context.Background()); !errors.Is(err, ErrCodeGeneration) {
		t.Fatalf("expected ErrCodeGeneration, got: %v", err)
	}
}
