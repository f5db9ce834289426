// Package careercard assembles the scoring context for one candidate from the
// application store, uploaded files and job/company text.
package careercard

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fadilmartias/career-intel/internal/contenthash"
	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/fadilmartias/career-intel/internal/logger"
	"github.com/fadilmartias/career-intel/internal/model"
	"github.com/fadilmartias/career-intel/internal/pdftext"
	"github.com/fadilmartias/career-intel/internal/repository"
	"github.com/fadilmartias/career-intel/internal/storage"
	"github.com/fadilmartias/career-intel/internal/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxInlineBytes is the largest upload attached verbatim for the model.
	MaxInlineBytes = 5 * 1024 * 1024

	SourceInline = "inline"
	SourceFile   = "file"

	extractionPlaceholder = "[Unable to extract text from the uploaded career card PDF.]"
)

type Builder struct {
	apps  repository.ApplicationRepositoryInterface
	jobs  repository.JobRepositoryInterface
	files storage.FileStorageInterface
	deep  util.PDFTextExtractor
	log   *zap.Logger
}

// NewBuilder wires the builder. deep may be nil to skip full PDF parsing.
func NewBuilder(
	apps repository.ApplicationRepositoryInterface,
	jobs repository.JobRepositoryInterface,
	files storage.FileStorageInterface,
	deep util.PDFTextExtractor,
	log *zap.Logger,
) *Builder {
	return &Builder{apps: apps, jobs: jobs, files: files, deep: deep, log: logger.OrNop(log)}
}

// Build loads everything needed to score identity and computes the input hash.
func (b *Builder) Build(ctx context.Context, identity domain.CanonicalIdentity) (*domain.CandidateContext, error) {
	app, err := b.findApplication(ctx, identity)
	if err != nil {
		return nil, err
	}

	var (
		card   any
		source string
		job    *model.Job
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		card, source, err = b.loadCareerCard(gctx, app)
		return err
	})
	g.Go(func() error {
		if app.JobID == nil {
			return nil
		}
		var err error
		job, err = b.jobs.FindJobWithOrganization(gctx, *app.JobID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scoring := domain.ScoringContext{
		CareerCardData:     card,
		CompanyDescription: companyDescription(job),
		RoleDescription:    roleDescription(job),
	}
	hash, err := contenthash.Hash(scoring)
	if err != nil {
		return nil, fmt.Errorf("hash scoring context: %w", err)
	}

	b.log.Debug("candidate context built",
		zap.String(logger.FieldCandidate, identity.StableID.String()),
		zap.Int64("application_id", app.ID),
		zap.String("career_card_source", source),
		zap.String("input_hash", hash),
	)

	return &domain.CandidateContext{
		Identity:   identity,
		Scoring:    scoring,
		InputHash:  hash,
		Provenance: provenance(app, job, source),
	}, nil
}

// Locate checks that an application exists for identity without loading the
// career card.
func (b *Builder) Locate(ctx context.Context, identity domain.CanonicalIdentity) error {
	_, err := b.findApplication(ctx, identity)
	return err
}

func (b *Builder) findApplication(ctx context.Context, identity domain.CanonicalIdentity) (*model.Application, error) {
	if identity.SourceApplicationID != nil {
		return b.apps.FindByID(ctx, *identity.SourceApplicationID)
	}
	return b.apps.FindByCandidateUUID(ctx, identity.StableID)
}

func (b *Builder) loadCareerCard(ctx context.Context, app *model.Application) (any, string, error) {
	if data, ok := decodeStructured(app.CareerCardData); ok {
		return data, SourceInline, nil
	}

	file, err := b.apps.LatestCareerCardFile(ctx, app.ID)
	if err != nil {
		return nil, "", err
	}
	if file == nil {
		return nil, "", fmt.Errorf("%w: application %d has no inline data or upload", domain.ErrCareerCardMissing, app.ID)
	}

	raw, resolved, err := b.files.Read(ctx, file.StoredPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}
		var missing *storage.MissingFileError
		if errors.As(err, &missing) {
			b.log.Warn("career card file missing", zap.String("stored_path", file.StoredPath), zap.Strings("tried", missing.Tried))
		}
		return nil, "", fmt.Errorf("%w: %w", domain.ErrCareerCardMissing, err)
	}

	switch detectKind(file, raw) {
	case kindJSON:
		if data, ok := decodeStructured(raw); ok {
			return data, SourceFile, nil
		}
		b.log.Warn("career card json unreadable", zap.String("path", resolved))
	case kindPDF:
		return b.document(file, resolved, raw), SourceFile, nil
	default:
		b.log.Warn("career card upload has unsupported type", zap.String("mime", file.MimeType), zap.String("path", resolved))
	}
	return nil, "", fmt.Errorf("%w: upload %d has no usable data", domain.ErrCareerCardMissing, file.ID)
}

// document synthesises the PDF career card. Text comes from the lexer, then
// the deep extractor, then a plain-text decode, then a placeholder.
func (b *Builder) document(file *model.CareerCardFile, resolved string, raw []byte) *domain.CareerCardDocument {
	text := pdftext.Extract(raw)
	if text == "" && b.deep != nil {
		deepText, err := b.deep.ExtractText(raw)
		if err != nil {
			b.log.Debug("deep pdf extraction failed", zap.String("extractor", b.deep.Name()), zap.Error(err))
		}
		text = pdftext.Normalize(deepText)
	}
	if text == "" {
		text = pdftext.PlainText(raw)
	}

	doc := &domain.CareerCardDocument{
		Format:           domain.FormatPDFExtractedText,
		Filename:         file.OriginalFilename,
		Mime:             file.MimeType,
		Text:             text,
		ApproxCharacters: utf8.RuneCountInString(text),
		SizeBytes:        int64(len(raw)),
	}
	if doc.Filename == "" {
		doc.Filename = filepath.Base(resolved)
	}
	if doc.Mime == "" {
		doc.Mime = "application/pdf"
	}
	if text == "" {
		b.log.Info("no text recovered from career card pdf", zap.String("path", resolved))
		doc.Format = domain.FormatPDFAttachment
		doc.Text = extractionPlaceholder
	}

	if len(raw) <= MaxInlineBytes {
		encoded := base64.StdEncoding.EncodeToString(raw)
		doc.InlineDataBase64 = &encoded
	} else {
		doc.InlineDataTruncated = true
	}
	return doc
}

// decodeStructured parses raw JSON; null, empty and unparsable input count as absent.
func decodeStructured(raw []byte) (any, bool) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	switch val := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return val, len(val) > 0
	case []any:
		return val, len(val) > 0
	default:
		return val, true
	}
}

type fileKind int

const (
	kindUnknown fileKind = iota
	kindJSON
	kindPDF
)

func detectKind(file *model.CareerCardFile, raw []byte) fileKind {
	mime := strings.ToLower(file.MimeType)
	ext := strings.ToLower(filepath.Ext(file.OriginalFilename))
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(file.StoredPath))
	}

	switch {
	case strings.Contains(mime, "json") || ext == ".json":
		return kindJSON
	case mime == "application/pdf" || ext == ".pdf" || bytes.HasPrefix(raw, []byte("%PDF-")):
		return kindPDF
	default:
		return kindUnknown
	}
}

func companyDescription(job *model.Job) string {
	if job == nil || job.Organization == nil {
		return ""
	}
	return joinText(job.Organization.Description, job.Organization.CultureText)
}

func roleDescription(job *model.Job) string {
	if job == nil {
		return ""
	}
	return joinText(job.Title, job.Description, job.Requirements, job.Responsibilities)
}

// joinText concatenates the non-empty parts and collapses all whitespace.
func joinText(parts ...string) string {
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func provenance(app *model.Application, job *model.Job, source string) domain.Provenance {
	p := domain.Provenance{
		ApplicationID:    &app.ID,
		JobID:            app.JobID,
		CareerCardSource: source,
	}
	if job != nil {
		p.OrgID = job.OrgID
		p.JobTitle = strings.TrimSpace(job.Title)
		if job.Organization != nil {
			p.CompanyName = strings.TrimSpace(job.Organization.Name)
		}
	}
	return p
}
