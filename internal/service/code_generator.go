package service

import (
	"context"
	"crypto/rand"
	"strings"

	"github.com/giftvault/internal/repository"
)

// codeAlphabet excludes 0, 1, I and O so codes survive transcription. Its
// length of 32 divides 256, so indexing random bytes introduces no bias.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// codeGroupLengths shapes a code into dash-separated groups.
var codeGroupLengths = []int{4, 4, 4, 6}

// CodeGenerator produces unique voucher codes.
type CodeGenerator struct {
	giftCardRepo repository.GiftCardRepository
	maxAttempts  int
}

// NewCodeGenerator creates a code generator. maxAttempts bounds the number of
// candidates tried before giving up on collisions.
func NewCodeGenerator(giftCardRepo repository.GiftCardRepository, maxAttempts int) *CodeGenerator {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &CodeGenerator{
		giftCardRepo: giftCardRepo,
		maxAttempts:  maxAttempts,
	}
}

// Generate returns a fresh code not present in the store. The unique index on
// code remains the final authority; callers still retry on duplicate inserts.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		exists, err := g.giftCardRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", mapStoreErr(err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeGeneration
}

func randomCode() (string, error) {
	total := 0
	for _, n := range codeGroupLengths {
		total += n
	}
	buf := make([]byte, total)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	var b strings.Builder
	offset := 0
	for i, n := range codeGroupLengths {
		if i > 0 {
			b.WriteByte('-')
		}
		for _, raw := range buf[offset : offset+n] {
			b.WriteByte(codeAlphabet[int(raw)%len(codeAlphabet)])
		}
		offset += n
	}
	return b.String(), nil
}
