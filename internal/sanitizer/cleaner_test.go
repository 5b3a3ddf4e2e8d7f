package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/user/news-crawler/internal/sanitizer"
)

func newCleaner() *sanitizer.Cleaner {
	return sanitizer.New(zap.NewNop())
}

func TestClean_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, newCleaner().Clean(""))
	assert.Empty(t, newCleaner().Clean("  \n\t "))
}

func TestClean_RemovesUnwantedTags(t *testing.T) {
	t.Parallel()

	in := `<div><p>keep</p><script>alert(1)</script><style>p{}</style>` +
		`<iframe src="x"></iframe><noscript>n</noscript><video><source src="a.mp4"><track src="t.vtt"></video>` +
		`<audio src="a.mp3"></audio><object data="x"></object><embed src="x"></div>`

	out := newCleaner().Clean(in)

	assert.Equal(t, "<div><p>keep</p></div>", out)
}

func TestClean_RemovesAdsAndPlayers(t *testing.T) {
	t.Parallel()

	in := `<p>Story</p><video>v</video><div class="ad-banner">x</div>` +
		`<div id="Advertisement-top">y</div><section class="wrap sponsor-box">z</section>` +
		`<div class="youtube-embed">yt</div><div class="media-player">mp</div><div class="Player_main">pl</div>`

	out := newCleaner().Clean(in)

	assert.Equal(t, "<p>Story</p>", out)
	assert.NotContains(t, strings.ToLower(out), "video")
	assert.NotContains(t, strings.ToLower(out), "ad-banner")
}

func TestClean_ParagraphStyleKeepsTextAlign(t *testing.T) {
	t.Parallel()

	out := newCleaner().Clean(`<p style="font-size:14px;text-align:center">t</p>`)

	assert.Equal(t, `<p style="text-align:center">t</p>`, out)
}

func TestClean_NormalizesPresentation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "font declarations stripped",
			in:   `<span style="font-family: Arial; color: red; font-weight: bold">x</span>`,
			want: `<span style="font-weight:bold">x</span>`,
		},
		{
			name: "style dropped when nothing remains",
			in:   `<span style="font-size:12px; line-height: 1.5">x</span>`,
			want: `<span>x</span>`,
		},
		{
			name: "background color is not color",
			in:   `<div style="background-color:#fff;color:#000">x</div>`,
			want: `<div style="background-color:#fff">x</div>`,
		},
		{
			name: "font tags unwrapped",
			in:   `<p><font face="Arial" size="3">Hello <font color="red">world</font></font></p>`,
			want: `<p>Hello world</p>`,
		},
		{
			name: "legacy attributes dropped",
			in:   `<table><tbody><tr><td color="red" face="x" size="2">c</td></tr></tbody></table>`,
			want: `<table><tbody><tr><td>c</td></tr></tbody></table>`,
		},
		{
			name: "heading styles removed",
			in:   `<h2 style="text-align:center;margin:0">Title</h2>`,
			want: `<h2>Title</h2>`,
		},
		{
			name: "paragraph without text-align loses style",
			in:   `<p style="margin:0;padding:2px">t</p>`,
			want: `<p>t</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, newCleaner().Clean(tt.in))
		})
	}
}

func TestClean_RemovesEmptyParagraphsAndComments(t *testing.T) {
	t.Parallel()

	in := "<p>one</p><p>   </p><p> </p><!-- tracking --><p><!-- c --></p><p>two</p>"

	assert.Equal(t, "<p>one</p><p>two</p>", newCleaner().Clean(in))
}

func TestClean_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	in := "\n\n  <p>Hello   world ,  again !</p>\n\n\n<p>Next\tline .</p>  "

	assert.Equal(t, "<p>Hello world, again!</p> <p>Next line.</p>", newCleaner().Clean(in))
}

func TestClean_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`<p style="font-size:14px;text-align:center">t</p>`,
		`<div class="content"><p>A  <b>bold</b> .</p><div class="ads_box">ad</div><font>f</font></div>`,
		`<p>x</p><!-- c --><p> </p><video>v</video><h1 style="color:red">h</h1>`,
		`<table><tr><td>cell ;</td></tr></table><p>&nbsp;text &amp; more</p>`,
		`plain text , no tags`,
	}

	cleaner := newCleaner()
	for _, in := range inputs {
		once := cleaner.Clean(in)
		assert.Equal(t, once, cleaner.Clean(once), "input %q", in)
	}
}
