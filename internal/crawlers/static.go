package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"math/rand"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/RecoveryAshes/CnkiCrawl/internal/config"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// StaticDetailFetcher 不启动浏览器,直接用 HTTP 获取详情页
// 知网部分详情页服务端直出,静态模式可以省掉浏览器开销
type StaticDetailFetcher struct {
	timeout time.Duration
	headers http.Header
}

// NewStaticDetailFetcher 创建静态详情抓取器
func NewStaticDetailFetcher(timeout time.Duration, headers http.Header) *StaticDetailFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &StaticDetailFetcher{timeout: timeout, headers: headers}
}

// Fetch 获取详情页并解析为 HTMLPage
func (f *StaticDetailFetcher) Fetch(ctx context.Context, pageURL string) (*HTMLPage, error) {
	c := colly.NewCollector(
		colly.UserAgent(config.UserAgents[rand.Intn(len(config.UserAgents))]),
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.timeout)

	var (
		page     *HTMLPage
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Encoding", "gzip, deflate, br")
		for name, values := range f.headers {
			if len(values) > 0 {
				r.Headers.Set(name, values[0])
			}
		}
		log.Debug().Str("url", r.URL.String()).Msg("静态获取详情页")
	})

	// colly 在调用 OnResponse 之前会按 Content-Type 的 charset 转成 UTF-8,
	// 但只自动解压 gzip。br/deflate 响应先去掉 charset,解压后再自行转码
	c.OnResponseHeaders(func(r *colly.Response) {
		ct := r.Headers.Get("Content-Type")
		if needsManualDecompress(r.Headers.Get("Content-Encoding")) && headerCharset(ct) != "" {
			r.Ctx.Put(ctxContentType, ct)
			r.Headers.Set("Content-Type", stripCharset(ct))
		}
	})

	c.OnResponse(func(r *colly.Response) {
		body := r.Body
		if enc := r.Headers.Get("Content-Encoding"); enc != "" {
			decompressed, err := decompressResponse(enc, r.Body)
			if err != nil {
				log.Warn().Err(err).Str("encoding", enc).Msg("解压响应失败,使用原始内容")
			} else {
				body = decompressed
			}
		}

		ct, converted := r.Ctx.Get(ctxContentType), false
		if ct == "" {
			ct = r.Headers.Get("Content-Type")
			converted = headerCharset(ct) != ""
		}
		reader, err := htmlReader(body, ct, converted)
		if err != nil {
			fetchErr = fmt.Errorf("识别页面编码失败: %w", err)
			return
		}
		page, fetchErr = ParseHTMLPage(r.Request.URL.String(), reader)
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("获取详情页失败 (状态码 %d): %w", r.StatusCode, err)
	})

	if err := c.Visit(pageURL); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("获取详情页失败: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if page == nil {
		return nil, fmt.Errorf("获取详情页失败: 无响应内容")
	}
	return page, nil
}

// ctxContentType 保存被去掉 charset 之前的 Content-Type
const ctxContentType = "original_content_type"

// htmlReader 返回 UTF-8 内容
// converted 为真表示 colly 已按响应头的 charset 转码;否则按响应头或 <meta charset> 识别
func htmlReader(body []byte, contentType string, converted bool) (io.Reader, error) {
	if converted {
		return bytes.NewReader(body), nil
	}
	return charset.NewReader(bytes.NewReader(body), contentType)
}

// headerCharset Content-Type 中声明的 charset,没有时为空
func headerCharset(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func stripCharset(contentType string) string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	delete(params, "charset")
	return mime.FormatMediaType(mediaType, params)
}

// needsManualDecompress colly 只处理 gzip
func needsManualDecompress(contentEncoding string) bool {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "br", "deflate":
		return true
	}
	return false
}

// decompressResponse 根据 Content-Encoding 解压响应体
// colly 已经处理过的 gzip 响应原样返回
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip":
		if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
			return body, nil
		}
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()
		return readAll(reader, "gzip")

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()
		return readAll(reader, "deflate")

	case "br":
		return readAll(brotli.NewReader(bytes.NewReader(body)), "brotli")

	case "", "identity":
		return body, nil

	default:
		log.Warn().Str("encoding", contentEncoding).Msg("未知的Content-Encoding")
		return body, nil
	}
}

func readAll(r io.Reader, name string) ([]byte, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s读取失败: %w", name, err)
	}
	return out, nil
}
