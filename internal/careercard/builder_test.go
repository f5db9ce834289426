package careercard

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/fadilmartias/career-intel/internal/model"
	"github.com/fadilmartias/career-intel/internal/storage"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeApps struct {
	byID     map[int64]*model.Application
	byUUID   map[uuid.UUID]*model.Application
	files    map[int64]*model.CareerCardFile
	uuidHits int
}

func (f *fakeApps) FindByID(_ context.Context, id int64) (*model.Application, error) {
	if app, ok := f.byID[id]; ok {
		return app, nil
	}
	return nil, fmt.Errorf("%w: application %d", domain.ErrCandidateNotFound, id)
}

func (f *fakeApps) FindByCandidateUUID(_ context.Context, id uuid.UUID) (*model.Application, error) {
	f.uuidHits++
	if app, ok := f.byUUID[id]; ok {
		return app, nil
	}
	return nil, fmt.Errorf("%w: candidate %s", domain.ErrCandidateNotFound, id)
}

func (f *fakeApps) LatestCareerCardFile(_ context.Context, applicationID int64) (*model.CareerCardFile, error) {
	return f.files[applicationID], nil
}

type fakeJobs struct {
	jobs map[int64]*model.Job
	err  error
}

func (f *fakeJobs) FindJobWithOrganization(_ context.Context, id int64) (*model.Job, error) {
	return f.jobs[id], f.err
}

type stubExtractor struct {
	text  string
	calls int
}

func (s *stubExtractor) Name() string { return "stub" }

func (s *stubExtractor) ExtractText([]byte) (string, error) {
	s.calls++
	return s.text, nil
}

func int64Ptr(v int64) *int64 { return &v }

func testJob() *model.Job {
	return &model.Job{
		ID:               7,
		OrgID:            int64Ptr(3),
		Title:            " Backend   Engineer ",
		Description:      "Build\n\nAPIs.",
		Requirements:     "Go,\tPostgres",
		Responsibilities: "",
		Organization: &model.Organization{
			ID:          3,
			Name:        " Acme ",
			Description: "  Acme makes   rockets. ",
			CultureText: "Remote\nfirst.",
		},
	}
}

type fixture struct {
	apps    *fakeApps
	jobs    *fakeJobs
	fs      afero.Fs
	builder *Builder
}

func newFixture(t *testing.T, deep *stubExtractor) *fixture {
	t.Helper()
	f := &fixture{
		apps: &fakeApps{
			byID:   map[int64]*model.Application{},
			byUUID: map[uuid.UUID]*model.Application{},
			files:  map[int64]*model.CareerCardFile{},
		},
		jobs: &fakeJobs{jobs: map[int64]*model.Job{7: testJob()}},
		fs:   afero.NewMemMapFs(),
	}
	files := storage.NewFileStorageWithFs(f.fs, []string{"/srv/uploads"})
	if deep != nil {
		f.builder = NewBuilder(f.apps, f.jobs, files, deep, nil)
	} else {
		f.builder = NewBuilder(f.apps, f.jobs, files, nil, nil)
	}
	return f
}

func (f *fixture) addApp(t *testing.T, id int64, inline string) *model.Application {
	t.Helper()
	app := &model.Application{ID: id, JobID: int64Ptr(7)}
	if inline != "" {
		app.CareerCardData = datatypes.JSON(inline)
	}
	f.apps.byID[id] = app
	return app
}

func (f *fixture) addUpload(t *testing.T, appID int64, name, mime string, content []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(f.fs, "/srv/uploads/cards/"+name, content, 0o644))
	f.apps.files[appID] = &model.CareerCardFile{
		ID:               appID * 10,
		ApplicationID:    appID,
		StoredPath:       "uploads/cards/" + name,
		MimeType:         mime,
		OriginalFilename: name,
		SizeBytes:        int64(len(content)),
	}
}

func sequential(id int64) domain.CanonicalIdentity {
	return domain.CanonicalIdentity{StableID: uuid.New(), SourceApplicationID: &id}
}

func TestBuildUsesInlineData(t *testing.T) {
	f := newFixture(t, nil)
	f.addApp(t, 1, `{"name":"Jane","skills":["go"]}`)

	got, err := f.builder.Build(context.Background(), sequential(1))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"name": "Jane", "skills": []any{"go"}}, got.Scoring.CareerCardData)
	assert.Equal(t, "Acme makes rockets. Remote first.", got.Scoring.CompanyDescription)
	assert.Equal(t, "Backend Engineer Build APIs. Go, Postgres", got.Scoring.RoleDescription)
	assert.Len(t, got.InputHash, 64)

	assert.Equal(t, SourceInline, got.Provenance.CareerCardSource)
	assert.Equal(t, int64(1), *got.Provenance.ApplicationID)
	assert.Equal(t, int64(7), *got.Provenance.JobID)
	assert.Equal(t, int64(3), *got.Provenance.OrgID)
	assert.Equal(t, "Backend   Engineer", got.Provenance.JobTitle)
	assert.Equal(t, "Acme", got.Provenance.CompanyName)
	assert.Zero(t, f.apps.uuidHits)
}

func TestBuildLooksUpStableIdentity(t *testing.T) {
	f := newFixture(t, nil)
	app := f.addApp(t, 2, `{"name":"Sam"}`)
	stable := uuid.New()
	f.apps.byUUID[stable] = app

	got, err := f.builder.Build(context.Background(), domain.CanonicalIdentity{StableID: stable})
	require.NoError(t, err)
	assert.Equal(t, 1, f.apps.uuidHits)
	assert.Equal(t, stable, got.Identity.StableID)
}

func TestBuildMissingJobYieldsEmptyDescriptions(t *testing.T) {
	f := newFixture(t, nil)
	app := f.addApp(t, 3, `{"name":"Kai"}`)
	app.JobID = nil

	got, err := f.builder.Build(context.Background(), sequential(3))
	require.NoError(t, err)
	assert.Equal(t, "", got.Scoring.CompanyDescription)
	assert.Equal(t, "", got.Scoring.RoleDescription)
	assert.Nil(t, got.Provenance.OrgID)
}

func TestBuildCandidateNotFound(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.builder.Build(context.Background(), sequential(404))
	assert.ErrorIs(t, err, domain.ErrCandidateNotFound)

	_, err = f.builder.Build(context.Background(), domain.CanonicalIdentity{StableID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrCandidateNotFound)
}

func TestLocate(t *testing.T) {
	f := newFixture(t, nil)
	f.addApp(t, 12, "")

	assert.NoError(t, f.builder.Locate(context.Background(), sequential(12)), "no career card is still a known candidate")
	assert.ErrorIs(t, f.builder.Locate(context.Background(), sequential(13)), domain.ErrCandidateNotFound)
}

func TestBuildCareerCardMissing(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture)
	}{
		{"no inline and no upload", func(t *testing.T, f *fixture) {
			f.addApp(t, 5, "")
		}},
		{"inline null", func(t *testing.T, f *fixture) {
			f.addApp(t, 5, "null")
		}},
		{"upload not on disk", func(t *testing.T, f *fixture) {
			f.addApp(t, 5, "")
			f.apps.files[5] = &model.CareerCardFile{ID: 50, ApplicationID: 5, StoredPath: "cards/gone.pdf", MimeType: "application/pdf"}
		}},
		{"broken json upload", func(t *testing.T, f *fixture) {
			f.addApp(t, 5, "")
			f.addUpload(t, 5, "card.json", "application/json", []byte(`{"name":`))
		}},
		{"unsupported upload", func(t *testing.T, f *fixture) {
			f.addApp(t, 5, "")
			f.addUpload(t, 5, "card.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("PK\x03\x04"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			tt.setup(t, f)

			got, err := f.builder.Build(context.Background(), sequential(5))
			assert.Nil(t, got)
			assert.ErrorIs(t, err, domain.ErrCareerCardMissing)
		})
	}
}

func TestBuildMissingFileKeepsDetail(t *testing.T) {
	f := newFixture(t, nil)
	f.addApp(t, 6, "")
	f.apps.files[6] = &model.CareerCardFile{ID: 60, ApplicationID: 6, StoredPath: "cards/gone.pdf"}

	_, err := f.builder.Build(context.Background(), sequential(6))

	var missing *storage.MissingFileError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "cards/gone.pdf", missing.StoredPath)
}

func TestBuildJSONUpload(t *testing.T) {
	f := newFixture(t, nil)
	f.addApp(t, 8, "")
	f.addUpload(t, 8, "card.json", "application/json", []byte(`{"headline":"Go dev"}`))

	got, err := f.builder.Build(context.Background(), sequential(8))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"headline": "Go dev"}, got.Scoring.CareerCardData)
	assert.Equal(t, SourceFile, got.Provenance.CareerCardSource)
}

func TestBuildPDFUpload(t *testing.T) {
	f := newFixture(t, nil)
	f.addApp(t, 9, "")
	pdf := []byte("%PDF-1.4\nBT (Jane Doe) Tj ET BT (Go Engineer) Tj ET\n%%EOF")
	f.addUpload(t, 9, "card.pdf", "application/pdf", pdf)

	got, err := f.builder.Build(context.Background(), sequential(9))
	require.NoError(t, err)

	doc, ok := got.Scoring.CareerCardData.(*domain.CareerCardDocument)
	require.True(t, ok)
	assert.Equal(t, domain.FormatPDFExtractedText, doc.Format)
	assert.Equal(t, "card.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.Mime)
	assert.Equal(t, "Jane Doe\nGo Engineer", doc.Text)
	assert.Equal(t, 20, doc.ApproxCharacters)
	assert.Equal(t, int64(len(pdf)), doc.SizeBytes)
	require.NotNil(t, doc.InlineDataBase64)
	assert.Equal(t, base64.StdEncoding.EncodeToString(pdf), *doc.InlineDataBase64)
	assert.False(t, doc.InlineDataTruncated)
}

func TestBuildPDFFallbacks(t *testing.T) {
	t.Run("deep extractor", func(t *testing.T) {
		deep := &stubExtractor{text: "  Parsed   by fitz \n"}
		f := newFixture(t, deep)
		f.addApp(t, 10, "")
		f.addUpload(t, 10, "card.pdf", "application/pdf", []byte("%PDF-1.7\n\xff\xfe compressed"))

		got, err := f.builder.Build(context.Background(), sequential(10))
		require.NoError(t, err)
		doc := got.Scoring.CareerCardData.(*domain.CareerCardDocument)
		assert.Equal(t, "Parsed by fitz", doc.Text)
		assert.Equal(t, 1, deep.calls)
	})

	t.Run("plain text", func(t *testing.T) {
		f := newFixture(t, nil)
		f.addApp(t, 11, "")
		f.addUpload(t, 11, "card.pdf", "application/pdf", []byte("Jane Doe\nSenior Go engineer"))

		got, err := f.builder.Build(context.Background(), sequential(11))
		require.NoError(t, err)
		doc := got.Scoring.CareerCardData.(*domain.CareerCardDocument)
		assert.Equal(t, domain.FormatPDFExtractedText, doc.Format)
		assert.Equal(t, "Jane Doe\nSenior Go engineer", doc.Text)
	})

	t.Run("placeholder", func(t *testing.T) {
		f := newFixture(t, &stubExtractor{})
		f.addApp(t, 12, "")
		f.addUpload(t, 12, "scan.pdf", "", []byte("%PDF-1.7\n\xff\xfe\x00\x01 image only"))

		got, err := f.builder.Build(context.Background(), sequential(12))
		require.NoError(t, err)
		doc := got.Scoring.CareerCardData.(*domain.CareerCardDocument)
		assert.Equal(t, domain.FormatPDFAttachment, doc.Format)
		assert.Equal(t, extractionPlaceholder, doc.Text)
		assert.Zero(t, doc.ApproxCharacters)
		assert.Equal(t, "application/pdf", doc.Mime)
		assert.NotNil(t, doc.InlineDataBase64)
	})
}

func TestBuildLargePDFIsNotInlined(t *testing.T) {
	f := newFixture(t, nil)
	f.addApp(t, 13, "")
	pdf := append([]byte("%PDF-1.4\nBT (Big) Tj ET\n"), bytes.Repeat([]byte{' '}, MaxInlineBytes)...)
	f.addUpload(t, 13, "big.pdf", "application/pdf", pdf)

	got, err := f.builder.Build(context.Background(), sequential(13))
	require.NoError(t, err)
	doc := got.Scoring.CareerCardData.(*domain.CareerCardDocument)
	assert.Nil(t, doc.InlineDataBase64)
	assert.True(t, doc.InlineDataTruncated)
	assert.Equal(t, "Big", doc.Text)
}

func TestBuildHashIgnoresInlineBytes(t *testing.T) {
	first := newFixture(t, nil)
	first.addApp(t, 14, "")
	first.addUpload(t, 14, "card.pdf", "application/pdf", []byte("%PDF-1.4 BT (Same) Tj ET v1"))

	second := newFixture(t, nil)
	second.addApp(t, 14, "")
	second.addUpload(t, 14, "card.pdf", "application/pdf", []byte("%PDF-1.4 BT (Same) Tj ET v2"))

	a, err := first.builder.Build(context.Background(), sequential(14))
	require.NoError(t, err)
	b, err := second.builder.Build(context.Background(), sequential(14))
	require.NoError(t, err)

	assert.Equal(t, a.InputHash, b.InputHash)
}

func TestBuildJobLookupError(t *testing.T) {
	f := newFixture(t, nil)
	f.addApp(t, 15, `{"name":"Lee"}`)
	f.jobs.err = errors.New("connection reset")

	_, err := f.builder.Build(context.Background(), sequential(15))
	assert.EqualError(t, err, "connection reset")
}
