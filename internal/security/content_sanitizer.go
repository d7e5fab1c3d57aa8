// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はHTMLコンテンツのサニタイズ機能のインターフェースを定義する。
// イベントの説明文はこのシステムの外で書き込まれるため、
// API応答として返す前にサニタイズする。
type ContentSanitizerService interface {
	// Sanitize はHTMLコンテンツをサニタイズして安全なテキストを返す。
	// 許可タグ（p, br, ul, ol, li, strong, em, a）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// ポリシーの内容:
//   - 許可タグ: p, br, ul, ol, li, strong, em, a
//   - script, iframe, style等は許可リストに含めないことで自動的に除去される
//   - on*イベント属性はbluemondayのデフォルトで許可されないため除去される
//   - aタグ: href属性のみ許可、target="_blank" と rel="noopener noreferrer" を強制付与
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AllowURLSchemes("http", "https")
	p.RequireNoFollowOnLinks(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &contentSanitizer{policy: p}
}

// Sanitize はHTMLコンテンツをサニタイズして安全なテキストを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return s.policy.Sanitize(raw)
}

// compile-time interface check
var _ ContentSanitizerService = (*contentSanitizer)(nil)
