package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/adforge/pkg/artifact"
	"github.com/matzehuels/adforge/pkg/channel"
	"github.com/matzehuels/adforge/pkg/creative"
	"github.com/matzehuels/adforge/pkg/errors"
	"github.com/matzehuels/adforge/pkg/export/sink"
	"github.com/matzehuels/adforge/pkg/layout"
)

var fixedDate = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

func compose(t *testing.T, ch, name string) *creative.LayoutVariation {
	t.Helper()
	c := layout.NewComposer(channel.Default(), nil, nil,
		layout.WithClock(func() time.Time { return fixedDate }),
		layout.WithIDGenerator(func() string { return "v-" + ch }),
	)
	v, err := c.Compose(context.Background(), layout.Request{
		Territory: creative.Territory{
			ID:          "t1",
			Name:        "Summer Launch",
			Positioning: "Cool drinks for hot days",
			Headlines:   []creative.HeadlinePair{{Headline: "Beat the heat"}},
		},
		Assets: []creative.Asset{
			{ID: "prod", Role: creative.RoleProduct, Dimensions: &creative.Size{Width: 800, Height: 800}},
			{ID: "logo", Role: creative.RoleLogo},
		},
		Guidelines: creative.BrandGuidelines{
			Name:   "Acme",
			Colors: creative.Palette{Primary: "#d93025", Secondary: []string{"#1a73e8"}, Background: "#ffffff", Text: "#202124"},
		},
		Channel: ch,
		Style:   layout.StyleBold,
		Name:    name,
	})
	require.NoError(t, err)
	return v
}

func newTestRenderer(opts ...Option) *Renderer {
	return NewRenderer(channel.Default(), artifact.NewMemory(), append([]Option{WithClock(func() time.Time { return fixedDate })}, opts...)...)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"My Campaign!", "My_Campaign_"},
		{"abc123", "abc123"},
		{"", ""},
		{"Été 2024", "_t__2024"},
		{"a/b\\c", "a_b_c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.in), tt.in)
	}
}

func TestExportFilename(t *testing.T) {
	r := newTestRenderer()
	res := r.Export(context.Background(), compose(t, "instagram_post", "My Campaign!"), Config{Channel: "instagram_post", Quality: QualityDraft})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "My_Campaign__instagram_post_2024-01-01.jpg", res.Filename)
	assert.Equal(t, "My_Campaign__instagram_post_2024-01-01.jpg", res.Artifact.Name)
}

func TestConfigValidate(t *testing.T) {
	reg := channel.Default()
	tests := []struct {
		name string
		cfg  Config
		code errors.Code
	}{
		{"ok", Config{Channel: "instagram_post", Quality: QualityPreview}, ""},
		{"compression low", Config{Channel: "instagram_post", Quality: QualityPreview, Compression: -1}, errors.ErrCodeInvalidExportConfig},
		{"compression high", Config{Channel: "instagram_post", Quality: QualityPreview, Compression: 101}, errors.ErrCodeInvalidExportConfig},
		{"compression bounds", Config{Channel: "instagram_post", Quality: QualityPreview, Compression: 100}, ""},
		{"unknown quality", Config{Channel: "instagram_post", Quality: "ultra"}, errors.ErrCodeInvalidExportConfig},
		{"production without title", Config{Channel: "a4_print", Quality: QualityProduction}, errors.ErrCodeInvalidExportConfig},
		{"production with title", Config{Channel: "a4_print", Quality: QualityProduction, Metadata: Metadata{Title: "Flyer"}}, ""},
		{"unknown channel", Config{Channel: "fax", Quality: QualityDraft}, errors.ErrCodeUnknownChannel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(reg)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestConfigEncoding(t *testing.T) {
	assert.Equal(t, 100, Config{}.JPEGQuality())
	assert.Equal(t, 1, Config{Compression: 100}.JPEGQuality())
	assert.Equal(t, 75, Config{Compression: 25}.JPEGQuality())

	a4, _ := channel.Default().Lookup("a4_print")
	assert.InDelta(t, 35.43, Config{IncludeBleed: true}.BleedPixels(a4), 0.01)
	assert.Zero(t, Config{}.BleedPixels(a4))
	assert.Equal(t, ProfileFOGRA39, Config{}.EffectiveProfile(a4))

	ig, _ := channel.Default().Lookup("instagram_post")
	assert.Equal(t, ProfileSRGB, Config{}.EffectiveProfile(ig))
	assert.Equal(t, channel.FormatPNG, Config{Format: "PNG"}.EffectiveFormat(ig))
	assert.Equal(t, channel.FormatJPG, Config{}.EffectiveFormat(ig))
}

func TestExportFormatClasses(t *testing.T) {
	tests := []struct {
		channel     string
		format      channel.Format
		contentType string
	}{
		{"instagram_post", channel.FormatJPG, ContentTypeJPEG},
		{"twitter_post", channel.FormatPNG, ContentTypePNG},
		{"display_responsive", channel.FormatSVG, ContentTypeSVG},
		{"a4_print", channel.FormatPDF, sink.DocumentContentType},
		{"tiktok_video", channel.FormatMP4, sink.VideoContentType},
	}
	r := newTestRenderer()
	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			res := r.Export(context.Background(), compose(t, tt.channel, "Spring"), Config{Channel: tt.channel, Quality: QualityDraft})
			require.True(t, res.Success, res.Error)
			assert.Equal(t, StatusSucceeded, res.Status)
			assert.Equal(t, string(tt.format), res.Format)
			assert.Equal(t, tt.contentType, res.ContentType)
			assert.Positive(t, res.Size)
			require.NotNil(t, res.Artifact)
			assert.Equal(t, res.Size, res.Artifact.Size)

			data, _, err := r.Store().Get(context.Background(), res.Artifact.ID)
			require.NoError(t, err)
			assert.Len(t, data, res.Size)
		})
	}
}

func TestExportPrintDocument(t *testing.T) {
	r := newTestRenderer()
	cfg := Config{
		Channel:          "a4_print",
		Quality:          QualityProduction,
		IncludeBleed:     true,
		IncludeCropMarks: true,
		Metadata:         Metadata{Title: "Flyer", Author: "Acme", Description: "Summer flyer"},
	}
	res := r.Export(context.Background(), compose(t, "a4_print", "Flyer"), cfg)
	require.True(t, res.Success, res.Error)

	data, _, err := r.Store().Get(context.Background(), res.Artifact.ID)
	require.NoError(t, err)
	doc, err := sink.ReadDocument(data)
	require.NoError(t, err)
	assert.Equal(t, 300, doc.DPI)
	assert.Equal(t, "CMYK", doc.ColorSpace)
	assert.Equal(t, ProfileFOGRA39, doc.ColorProfile)
	assert.InDelta(t, 35.43, doc.Bleed, 0.01)
	assert.True(t, doc.CropMarks)
	assert.Equal(t, "Flyer", doc.Metadata.Title)
	assert.Equal(t, "Summer flyer", doc.Metadata.Subject)
	assert.True(t, doc.Metadata.Created.Equal(fixedDate))
	require.NotNil(t, doc.Channel)
	assert.Equal(t, "a4_print", doc.Channel.ID)
	var settings Config
	require.NoError(t, json.Unmarshal(doc.Settings, &settings))
	assert.Equal(t, cfg, settings)
	assert.Equal(t, "v-a4_print", doc.Layout.ID)
}

func TestExportRasterQualityScale(t *testing.T) {
	r := newTestRenderer()
	v := compose(t, "twitter_post", "Scale")
	draft := r.Export(context.Background(), v, Config{Channel: "twitter_post", Quality: QualityDraft})
	preview := r.Export(context.Background(), v, Config{Channel: "twitter_post", Quality: QualityPreview})
	require.True(t, draft.Success, draft.Error)
	require.True(t, preview.Success, preview.Error)
	assert.Less(t, draft.Size, preview.Size)
}

func TestExportUnsupportedFormat(t *testing.T) {
	r := newTestRenderer()
	res := r.Export(context.Background(), compose(t, "instagram_post", "X"), Config{Channel: "instagram_post", Quality: QualityDraft, Format: "gif"})
	assert.False(t, res.Success)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, errors.ErrCodeUnsupportedFileFormat, res.Code)
	assert.Contains(t, res.Error, "gif")
	assert.Nil(t, res.Artifact)
	assert.Empty(t, res.Filename)
	assert.Zero(t, res.Size)
}

func TestExportInvalidConfig(t *testing.T) {
	store := artifact.NewMemory()
	r := NewRenderer(channel.Default(), store)
	res := r.Export(context.Background(), compose(t, "instagram_post", "X"), Config{Channel: "instagram_post", Quality: QualityDraft, Compression: 150})
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, errors.ErrCodeInvalidExportConfig, res.Code)
	assert.Empty(t, res.Format, "rejected before rendering")
	assert.Zero(t, store.Len())

	res = r.Export(context.Background(), nil, Config{Channel: "instagram_post", Quality: QualityDraft})
	assert.Equal(t, errors.ErrCodeInvalidInput, res.Code)
}

func TestExportDeterministic(t *testing.T) {
	v := compose(t, "instagram_post", "Repeat")
	for _, ch := range []string{"instagram_post", "display_responsive", "a4_print"} {
		cfg := Config{Channel: ch, Quality: QualityDraft}
		a := newTestRenderer().Export(context.Background(), v, cfg)
		b := newTestRenderer().Export(context.Background(), v, cfg)
		require.True(t, a.Success, a.Error)
		assert.Equal(t, a.Filename, b.Filename, ch)
		assert.Equal(t, a.Size, b.Size, ch)
	}
}

func TestExportDeterministicWallClock(t *testing.T) {
	v := compose(t, "a4_print", "Repeat")
	r := NewRenderer(channel.Default(), artifact.NewMemory())
	cfg := Config{Channel: "a4_print", Quality: QualityDraft}
	first := r.Export(context.Background(), v, cfg)
	require.True(t, first.Success, first.Error)
	for i := 0; i < 50; i++ {
		res := r.Export(context.Background(), v, cfg)
		require.True(t, res.Success, res.Error)
		require.Equal(t, first.Size, res.Size, "export %d", i)
	}
}

func TestExportDatesAreUTC(t *testing.T) {
	// 23:30 on Dec 31 in UTC-5 is already Jan 1 in UTC.
	local := time.Date(2023, 12, 31, 23, 30, 0, 500, time.FixedZone("EST", -5*3600))
	r := newTestRenderer(WithClock(func() time.Time { return local }))
	res := r.Export(context.Background(), compose(t, "a4_print", "Flyer"), Config{Channel: "a4_print", Quality: QualityDraft})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Flyer_a4_print_2024-01-01.pdf", res.Filename)

	data, _, err := r.Store().Get(context.Background(), res.Artifact.ID)
	require.NoError(t, err)
	doc, err := sink.ReadDocument(data)
	require.NoError(t, err)
	assert.True(t, doc.Metadata.Created.Equal(time.Date(2024, 1, 1, 4, 30, 0, 0, time.UTC)), "created = %v", doc.Metadata.Created)
}

func TestExportUsesTargetChannelCanvas(t *testing.T) {
	r := newTestRenderer()
	v := compose(t, "instagram_post", "Spring")

	res := r.Export(context.Background(), v, Config{Channel: "display_responsive", Quality: QualityDraft})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Spring_display_responsive_2024-01-01.svg", res.Filename)
	data, _, err := r.Store().Get(context.Background(), res.Artifact.ID)
	require.NoError(t, err)
	assert.Contains(t, string(data), `width="1200" height="628"`)

	res = r.Export(context.Background(), v, Config{Channel: "a4_print", Quality: QualityDraft})
	require.True(t, res.Success, res.Error)
	data, _, err = r.Store().Get(context.Background(), res.Artifact.ID)
	require.NoError(t, err)
	doc, err := sink.ReadDocument(data)
	require.NoError(t, err)
	require.NotNil(t, doc.Channel)
	assert.Equal(t, creative.Size{Width: doc.Channel.Width, Height: doc.Channel.Height}, doc.Trim)
	for _, img := range doc.Layout.Images {
		assert.True(t, img.Rect.Within(float64(doc.Trim.Width), float64(doc.Trim.Height)), "%+v", img.Rect)
	}

	assert.Equal(t, 1080, v.Width, "source layout is unchanged")
}

func TestExportLayoutWithoutCanvas(t *testing.T) {
	r := newTestRenderer()
	v := &creative.LayoutVariation{ID: "posted", Name: "Posted", Channel: "display_responsive"}
	res := r.Export(context.Background(), v, Config{Channel: "display_responsive", Quality: QualityDraft})
	require.True(t, res.Success, res.Error)
	data, _, err := r.Store().Get(context.Background(), res.Artifact.ID)
	require.NoError(t, err)
	assert.Contains(t, string(data), `viewBox="0 0 1200 628"`)
}

type failingStore struct{ artifact.Store }

func (failingStore) Put(context.Context, string, string, []byte) (artifact.Ref, error) {
	return artifact.Ref{}, errors.New(errors.ErrCodeStorage, "disk full")
}

func TestExportStoreFailure(t *testing.T) {
	r := NewRenderer(channel.Default(), failingStore{})
	res := r.Export(context.Background(), compose(t, "display_responsive", "X"), Config{Channel: "display_responsive", Quality: QualityDraft})
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, errors.ErrCodeStorage, res.Code)
	assert.Equal(t, "disk full", res.Error)
}

func TestExportFormatsArchive(t *testing.T) {
	r := newTestRenderer()
	o := NewOrchestrator(r)
	v := compose(t, "instagram_post", "Bundle")
	batch := o.ExportFormats(context.Background(), v, []Config{
		{Channel: "instagram_post", Quality: QualityDraft},
		{Channel: "instagram_post", Quality: QualityDraft, Format: channel.FormatPNG},
		{Channel: "instagram_post", Quality: QualityDraft, Format: channel.FormatSVG},
	})

	assert.Equal(t, 3, batch.SuccessCount)
	assert.Zero(t, batch.FailureCount)
	require.NotNil(t, batch.Archive)
	assert.Equal(t, "Bundle_2024-01-01.zip", batch.Archive.Name)
	assert.Equal(t, ContentTypeZip, batch.Archive.ContentType)

	data, _, err := r.Store().Get(context.Background(), batch.Archive.ID)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"Bundle_instagram_post_2024-01-01.jpg",
		"Bundle_instagram_post_2024-01-01.png",
		"Bundle_instagram_post_2024-01-01.svg",
	}, names)

	rc, err := zr.File[2].Open()
	require.NoError(t, err)
	svg, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Len(t, svg, batch.Results[2].Size)
}

func TestExportFormatsCounts(t *testing.T) {
	o := NewOrchestrator(newTestRenderer())
	v := compose(t, "display_responsive", "Counts")

	cfgs := []Config{
		{Channel: "display_responsive", Quality: QualityDraft},
		{Channel: "display_responsive", Quality: QualityDraft, Format: "gif"},
		{Channel: "display_responsive", Quality: QualityDraft, Format: channel.FormatPDF},
		{Channel: "display_responsive", Quality: QualityDraft, Format: "bmp"},
		{Channel: "display_responsive", Quality: QualityDraft, Format: channel.FormatMP4},
	}
	batch := o.ExportFormats(context.Background(), v, cfgs)

	assert.Len(t, batch.Results, 5)
	assert.Equal(t, 2, batch.FailureCount)
	assert.Equal(t, 3, batch.SuccessCount)
	assert.Equal(t, len(batch.Results), batch.SuccessCount+batch.FailureCount)
	total := 0
	for _, r := range batch.Results {
		total += r.Size
	}
	assert.Equal(t, total, batch.TotalSize)
	assert.Equal(t, errors.ErrCodeUnsupportedFileFormat, batch.Results[1].Code)
	assert.NotNil(t, batch.Archive)
}

func TestExportFormatsSingleSuccessNoArchive(t *testing.T) {
	o := NewOrchestrator(newTestRenderer())
	v := compose(t, "display_responsive", "One")
	batch := o.ExportFormats(context.Background(), v, []Config{
		{Channel: "display_responsive", Quality: QualityDraft},
		{Channel: "display_responsive", Quality: QualityDraft, Format: "gif"},
	})
	assert.Equal(t, 1, batch.SuccessCount)
	assert.Nil(t, batch.Archive)
}

func TestExportProject(t *testing.T) {
	r := newTestRenderer()
	o := NewOrchestrator(r)
	layouts := []*creative.LayoutVariation{
		compose(t, "display_responsive", "Web"),
		compose(t, "a4_print", "Flyer"),
		nil,
	}

	batch := o.ExportProject(context.Background(), layouts, ProjectOptions{Name: "Summer", Quality: QualityDraft})
	require.Len(t, batch.Results, 3)
	assert.Equal(t, 2, batch.SuccessCount)
	assert.Equal(t, 1, batch.FailureCount)
	require.NotNil(t, batch.Archive)
	assert.Equal(t, "Summer_2024-01-01.zip", batch.Archive.Name)

	web := o.ProjectConfig(layouts[0], ProjectOptions{})
	assert.False(t, web.IncludeBleed)
	assert.Equal(t, QualityProduction, web.Quality)
	assert.Equal(t, "Web", web.Metadata.Title)

	flyer := o.ProjectConfig(layouts[1], ProjectOptions{Quality: QualityDraft})
	assert.True(t, flyer.IncludeBleed)
	assert.True(t, flyer.IncludeCropMarks)
	assert.Equal(t, ProfileFOGRA39, flyer.ColorProfile)

	data, _, err := r.Store().Get(context.Background(), batch.Results[1].Artifact.ID)
	require.NoError(t, err)
	doc, err := sink.ReadDocument(data)
	require.NoError(t, err)
	assert.True(t, doc.CropMarks)
	assert.Positive(t, doc.Bleed)
}

func TestExportProjectCanceled(t *testing.T) {
	o := NewOrchestrator(newTestRenderer())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	layouts := []*creative.LayoutVariation{
		compose(t, "display_responsive", "A"),
		compose(t, "instagram_post", "B"),
	}
	batch := o.ExportProject(ctx, layouts, ProjectOptions{Quality: QualityDraft})
	require.Len(t, batch.Results, 2)
	assert.Equal(t, 2, batch.FailureCount)
	for _, r := range batch.Results {
		assert.Equal(t, errors.ErrCodeCanceled, r.Code)
		assert.Equal(t, StatusFailed, r.Status)
	}
	assert.Nil(t, batch.Archive)
	assert.Equal(t, "v-display_responsive", batch.Results[0].LayoutID)
}

func TestPresets(t *testing.T) {
	p := DefaultPresets()
	assert.Equal(t, []string{"print-production", "review-draft", "social-web"}, p.Names())

	cfg, err := p.Apply("print-production", "a4_print")
	require.NoError(t, err)
	assert.Equal(t, "a4_print", cfg.Channel)
	assert.Equal(t, QualityProduction, cfg.Quality)
	assert.True(t, cfg.IncludeBleed)
	assert.Equal(t, ProfileFOGRA39, cfg.ColorProfile)

	_, err = p.Lookup("nope")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	more, err := p.With(Preset{Name: "review-draft", Config: Config{Quality: QualityPreview, Compression: 10}}, Preset{Name: "email"})
	require.NoError(t, err)
	assert.Len(t, more.Names(), 4)
	rd, _ := more.Lookup("review-draft")
	assert.Equal(t, QualityPreview, rd.Config.Quality)
	email, _ := more.Apply("email", "medium_rectangle")
	assert.Equal(t, QualityPreview, email.Quality, "quality defaults to preview")
	assert.Len(t, p.Names(), 3, "original set is unchanged")

	_, err = NewPresets(Preset{Name: "bad", Config: Config{Compression: 200}})
	assert.Error(t, err)
	_, err = NewPresets(Preset{})
	assert.Error(t, err)
}

func TestUniqueName(t *testing.T) {
	seen := map[string]int{}
	var got []string
	for _, n := range []string{"a.jpg", "a.jpg", "b", "a.jpg", "b"} {
		got = append(got, uniqueName(n, seen))
	}
	assert.Equal(t, []string{"a.jpg", "a_2.jpg", "b", "a_3.jpg", "b_2"}, got)

	seen = map[string]int{}
	got = nil
	for _, n := range []string{"x_2.jpg", "x.jpg", "x.jpg", "x.jpg"} {
		got = append(got, uniqueName(n, seen))
	}
	assert.Equal(t, []string{"x_2.jpg", "x.jpg", "x_3.jpg", "x_4.jpg"}, got)
}

func TestBuildArchive(t *testing.T) {
	files := make([]archiveFile, 3)
	for i := range files {
		files[i] = archiveFile{name: "same.txt", data: []byte(fmt.Sprintf("file %d", i))}
	}
	data, err := buildArchive(files, fixedDate)
	require.NoError(t, err)
	again, err := buildArchive(files, fixedDate)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)
	assert.Equal(t, "same_3.txt", zr.File[2].Name)
}
