// Package extract はソーシャルメディアの料理動画URLからの
// レシピ抽出パイプラインを提供する。
// ページメタデータの取得とLLMによる構造化を含む。
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PietOff/social-recipe-app/internal/model"
	"golang.org/x/net/html"
)

// PageData は投稿ページから取得したメタデータ。
// LLMへの入力テキストとサムネイルURLの供給源になる。
type PageData struct {
	Title        string
	Description  string
	ThumbnailURL string
}

// CombinedText はLLMに渡すテキストを組み立てる。
func (p PageData) CombinedText() string {
	return fmt.Sprintf("Title: %s\nDescription: %s", p.Title, p.Description)
}

// SSRFValidator はSSRF検証のインターフェース。
// security.URLGuardを抽象化してテスタビリティを向上させる。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration) *http.Client
}

// PageScraper は投稿ページのOpen Graphメタデータを取得する。
type PageScraper struct {
	ssrfGuard SSRFValidator
	timeout   time.Duration
	maxBody   int64
}

// NewPageScraper はPageScraperの新しいインスタンスを生成する。
func NewPageScraper(ssrfGuard SSRFValidator, timeout time.Duration, maxBody int64) *PageScraper {
	return &PageScraper{
		ssrfGuard: ssrfGuard,
		timeout:   timeout,
		maxBody:   maxBody,
	}
}

// Scrape は指定URLのページを取得し、メタデータを抽出する。
// 1. SSRF検証を実行
// 2. URLにHTTPリクエストを送信
// 3. headタグのOpen Graphメタとtitleタグを解析
func (s *PageScraper) Scrape(ctx context.Context, inputURL string) (*PageData, error) {
	if inputURL == "" {
		return nil, model.NewInvalidURLError("URLが入力されていません")
	}

	if s.ssrfGuard != nil {
		if err := s.ssrfGuard.ValidateURL(inputURL); err != nil {
			return nil, model.NewSSRFBlockedError()
		}
	}

	client := s.getHTTPClient()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, inputURL, nil)
	if err != nil {
		return nil, model.NewInvalidURLError(err.Error())
	}
	req.Header.Set("User-Agent", "RecipeApp/1.0")
	req.Header.Set("Accept", "text/html, */*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, model.NewExtractionFailedError(fmt.Sprintf("ページの取得に失敗: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, model.NewExtractionFailedError(fmt.Sprintf("ページがステータス %d を返しました", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return nil, model.NewExtractionFailedError(fmt.Sprintf("レスポンスの読み取りに失敗: %v", err))
	}

	data := parsePageMetadata(body)
	if data.Title == "" && data.Description == "" {
		return nil, model.NewExtractionFailedError("ページからメタデータを取得できませんでした")
	}

	return data, nil
}

// parsePageMetadata はHTMLのheadタグからOpen Graphメタデータを解析する。
// og:title / og:description / og:image を優先し、
// titleタグと meta name="description" をフォールバックとして使用する。
func parsePageMetadata(htmlBody []byte) *PageData {
	data := &PageData{}
	var fallbackTitle, fallbackDescription string

	tokenizer := html.NewTokenizer(bytes.NewReader(htmlBody))
	inTitle := false

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return finishPageData(data, fallbackTitle, fallbackDescription)

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			tagName := string(tn)

			if tagName == "title" {
				inTitle = true
				continue
			}

			if tagName == "body" {
				// bodyに入ったらheadの解析を終了
				return finishPageData(data, fallbackTitle, fallbackDescription)
			}

			if tagName != "meta" || !hasAttr {
				continue
			}

			// meta要素の属性を解析
			var property, name, content string
			for {
				key, val, more := tokenizer.TagAttr()
				k := strings.ToLower(string(key))
				v := string(val)
				switch k {
				case "property":
					property = strings.ToLower(v)
				case "name":
					name = strings.ToLower(v)
				case "content":
					content = v
				}
				if !more {
					break
				}
			}

			switch property {
			case "og:title":
				data.Title = content
			case "og:description":
				data.Description = content
			case "og:image":
				data.ThumbnailURL = content
			}
			if name == "description" && fallbackDescription == "" {
				fallbackDescription = content
			}

		case html.TextToken:
			if inTitle && fallbackTitle == "" {
				fallbackTitle = strings.TrimSpace(string(tokenizer.Text()))
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "title":
				inTitle = false
			case "head":
				return finishPageData(data, fallbackTitle, fallbackDescription)
			}
		}
	}
}

// finishPageData はOpen Graphメタが得られなかったフィールドに
// フォールバック値を補完する。
func finishPageData(data *PageData, fallbackTitle, fallbackDescription string) *PageData {
	if data.Title == "" {
		data.Title = fallbackTitle
	}
	if data.Description == "" {
		data.Description = fallbackDescription
	}
	return data
}

// getHTTPClient はHTTPクライアントを取得する。
// SSRFGuardが設定されている場合はSSRF防止付きクライアントを返す。
func (s *PageScraper) getHTTPClient() *http.Client {
	if s.ssrfGuard != nil {
		return s.ssrfGuard.NewSafeClient(s.timeout)
	}
	return &http.Client{Timeout: s.timeout}
}
