package security

import (
	"strings"
	"testing"
)

// --- テスト ---

// scriptタグが内容ごと除去されることを検証する。
func TestSanitize_RemovesScriptTags(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<p>イベント詳細</p><script>alert('xss')</script>`)

	if strings.Contains(got, "script") {
		t.Errorf("output still contains script tag: %q", got)
	}
	if strings.Contains(got, "alert") {
		t.Errorf("output still contains script content: %q", got)
	}
	if !strings.Contains(got, "<p>イベント詳細</p>") {
		t.Errorf("output lost allowed content: %q", got)
	}
}

// iframeとstyleも除去されることを検証する。
func TestSanitize_RemovesIframeAndStyle(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<iframe src="https://evil.example"></iframe><style>body{display:none}</style><ul><li>持ち物</li></ul>`)

	if strings.Contains(got, "iframe") || strings.Contains(got, "style") {
		t.Errorf("output still contains blocked tags: %q", got)
	}
	if !strings.Contains(got, "<li>持ち物</li>") {
		t.Errorf("output lost allowed list content: %q", got)
	}
}

// on*イベント属性が除去されることを検証する。
func TestSanitize_RemovesEventAttributes(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<p onclick="steal()">クリック</p>`)

	if strings.Contains(got, "onclick") {
		t.Errorf("output still contains onclick attribute: %q", got)
	}
	if !strings.Contains(got, "クリック") {
		t.Errorf("output lost text content: %q", got)
	}
}

// 許可タグのみが通過することを検証する。
func TestSanitize_AllowsWhitelistedTags(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p><strong>重要</strong>と<em>補足</em></p><ol><li>一</li></ol>`
	got := s.Sanitize(input)

	for _, tag := range []string{"<p>", "<strong>", "<em>", "<ol>", "<li>"} {
		if !strings.Contains(got, tag) {
			t.Errorf("allowed tag %s was removed: %q", tag, got)
		}
	}
}

// aタグはhref付きで通過し、完全修飾リンクにはtarget=_blankが
// 付与されることを検証する。
func TestSanitize_LinksGetTargetBlank(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<a href="https://example.com/event">詳細</a>`)

	if !strings.Contains(got, `href="https://example.com/event"`) {
		t.Errorf("href was removed: %q", got)
	}
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("target=_blank was not added: %q", got)
	}
}

// javascriptスキームのリンクは無害化されることを検証する。
func TestSanitize_BlocksJavascriptScheme(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<a href="javascript:alert(1)">リンク</a>`)

	if strings.Contains(got, "javascript:") {
		t.Errorf("javascript scheme survived: %q", got)
	}
}

func TestSanitize_EmptyInput(t *testing.T) {
	s := NewContentSanitizer()

	if got := s.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty", got)
	}
}

// 同一入力に対して常に同一出力を返す（冪等性）ことを検証する。
func TestSanitize_IsIdempotent(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p>詳細は<a href="https://example.com">こちら</a></p><script>x</script>`
	first := s.Sanitize(input)
	second := s.Sanitize(first)

	if first != second {
		t.Errorf("sanitize is not idempotent:\nfirst  = %q\nsecond = %q", first, second)
	}
}
