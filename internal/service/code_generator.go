package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"cajachica/internal/repository"
	"cajachica/pkg/apperror"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	PrefixFundRequest = "SOL"
	PrefixCashFund    = "FNRO"
)

var codeSuffix = regexp.MustCompile(`-(\d+)$`)

// CodeSource returns the most recently created code with a prefix, or "".
type CodeSource interface {
	LatestCode(ctx context.Context, prefix string) (string, error)
}

// CodeGenerator produces sequential business codes such as SOL-00048.
type CodeGenerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

type codeGenerator struct {
	db      *gorm.DB
	sources map[string]CodeSource
	log     *zap.Logger
}

// NewCodeGenerator wires the request and fund code sources. db is only used
// for the postgres advisory lock and may be nil.
func NewCodeGenerator(db *gorm.DB, requests, funds CodeSource, log *zap.Logger) CodeGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &codeGenerator{
		db: db,
		sources: map[string]CodeSource{
			PrefixFundRequest: requests,
			PrefixCashFund:    funds,
		},
		log: log,
	}
}

func (g *codeGenerator) Next(ctx context.Context, prefix string) (string, error) {
	source, ok := g.sources[prefix]
	if !ok || source == nil {
		return "", apperror.Internal(fmt.Sprintf("no code source for prefix %q", prefix), nil)
	}

	// Serialize generators of the same prefix until the caller's transaction ends
	if g.db != nil && repository.InTx(ctx) && g.db.Dialector.Name() == "postgres" {
		if err := repository.GetDB(ctx, g.db).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error; err != nil {
			return "", apperror.Internal("failed to lock code sequence", err)
		}
	}

	last, err := source.LatestCode(ctx, prefix)
	if err != nil {
		return "", apperror.Internal("failed to read latest code", err)
	}
	return fmt.Sprintf("%s-%05d", prefix, g.nextSequence(prefix, last)), nil
}

func (g *codeGenerator) nextSequence(prefix, last string) int {
	if last == "" {
		return 1
	}
	m := codeSuffix.FindStringSubmatch(last)
	if m == nil {
		g.log.Warn("malformed stored code, restarting sequence", zap.String("prefix", prefix), zap.String("code", last))
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		g.log.Warn("unparseable code sequence, restarting sequence", zap.String("prefix", prefix), zap.String("code", last), zap.Error(err))
		return 1
	}
	return n + 1
}
