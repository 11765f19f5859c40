package crawlers

import (
	"context"
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/CnkiCrawl/internal/config"
	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homeHTML = `<html><body>
<div id="DBFieldBox"><span>主题</span></div>
<div id="DBFieldList">
  <a value="SU$%=|">主题</a><a value="AU$=|">作者</a><a value="KY$=|">关键词</a>
</div>
<input id="txt_SearchText" value="旧内容"/>
<input class="search-btn" type="button"/>
</body></html>`

const advSearchHTML = `<html><body>
<ul><li class="senior">高级检索</li><li class="professional-search">专业检索</li></ul>
<textarea class="professional-input"></textarea>
<div class="professional-search"><input class="btn-search" type="button"/></div>
</body></html>`

// clickRecorder 记录点击并在提交时切换到结果页
type clickRecorder struct {
	clicked []string
	typed   string
	results *goquery.Document
}

func (r *clickRecorder) handle(p *HTMLPage, sel *goquery.Selection) error {
	label := goquery.NodeName(sel)
	if id, ok := sel.Attr("id"); ok {
		label = "#" + id
	} else if v, ok := sel.Attr("value"); ok && goquery.NodeName(sel) == "a" {
		label = "option:" + v
	} else if class, ok := sel.Attr("class"); ok {
		label = "." + class
	}
	r.clicked = append(r.clicked, label)

	if label == ".search-btn" || label == ".btn-search" {
		doc := p.document()
		r.typed = doc.Find("#txt_SearchText").AttrOr("value", "")
		if r.typed == "" {
			r.typed = doc.Find("textarea").AttrOr("value", "")
		}
		if r.results != nil {
			p.SetDocument(r.results)
		}
	}
	return nil
}

func newPageWithLoader(t *testing.T, docs map[string]string) *HTMLPage {
	t.Helper()
	page := NewHTMLPage("", nil)
	page.SetLoader(func(url string) (*goquery.Document, error) {
		html, ok := docs[url]
		if !ok {
			return nil, errors.New("404")
		}
		return mustDoc(t, html), nil
	})
	return page
}

func newTestDriver() *Driver {
	return NewDriver(NewPacer(false), 0, 0)
}

func TestDirectSearch(t *testing.T) {
	page := newPageWithLoader(t, map[string]string{config.HomeURL: homeHTML})
	rec := &clickRecorder{results: mustDoc(t, resultsPage("石墨烯", 1, 3, ""))}
	page.OnClick(rec.handle)

	q := models.SearchQuery{Text: "石墨烯", FieldName: "作者", SortName: "相关度", Pages: 1}
	require.NoError(t, newTestDriver().DirectSearch(context.Background(), page, q))

	assert.Equal(t, 1, page.Navigations())
	assert.Equal(t, "石墨烯", rec.typed, "输入前应清空输入框")
	assert.Equal(t, []string{"#DBFieldBox", "option:AU$=|", ".search-btn"}, rec.clicked)
}

func TestDirectSearch_DefaultFieldSkipsSelector(t *testing.T) {
	page := newPageWithLoader(t, map[string]string{config.HomeURL: homeHTML})
	rec := &clickRecorder{}
	page.OnClick(rec.handle)

	q := models.SearchQuery{Text: "graphene", FieldName: "主题", SortName: "相关度", Pages: 1}
	require.NoError(t, newTestDriver().DirectSearch(context.Background(), page, q))
	assert.Equal(t, []string{".search-btn"}, rec.clicked)
}

func TestDirectSearch_SortIsBestEffort(t *testing.T) {
	page := newPageWithLoader(t, map[string]string{config.HomeURL: homeHTML})
	rec := &clickRecorder{results: mustDoc(t, resultsPage("q", 1, 1, ""))}
	page.OnClick(rec.handle)

	// 结果页没有排序控件 #CF
	q := models.SearchQuery{Text: "q", FieldName: "主题", SortName: "被引", Pages: 1}
	assert.NoError(t, newTestDriver().DirectSearch(context.Background(), page, q))
}

func TestDirectSearch_SubmitUnreachable(t *testing.T) {
	html := `<html><body><input id="txt_SearchText"/></body></html>`
	page := newPageWithLoader(t, map[string]string{config.HomeURL: html})

	q := models.SearchQuery{Text: "q", FieldName: "主题", SortName: "相关度", Pages: 1}
	err := newTestDriver().DirectSearch(context.Background(), page, q)
	assert.ErrorIs(t, err, ErrSubmitUnreachable)
}

func TestDirectSearch_NavigationFailure(t *testing.T) {
	page := newPageWithLoader(t, map[string]string{})
	q := models.SearchQuery{Text: "q", FieldName: "主题", SortName: "相关度", Pages: 1}
	assert.Error(t, newTestDriver().DirectSearch(context.Background(), page, q))
}

func TestProfessionalSearch(t *testing.T) {
	page := newPageWithLoader(t, map[string]string{config.AdvSearchURL: advSearchHTML})
	rec := &clickRecorder{}
	page.OnClick(rec.handle)

	q := models.SearchQuery{Text: "数字经济", FieldName: "关键词", Journal: "经济研究", SortName: "相关度", Pages: 1}
	expr, err := newTestDriver().ProfessionalSearch(context.Background(), page, q)
	require.NoError(t, err)

	assert.Equal(t, "(KY='数字经济') AND (JN='经济研究')", expr)
	assert.Equal(t, expr, rec.typed)
	assert.Equal(t, []string{".professional-search", ".btn-search"}, rec.clicked)
}

func TestProfessionalSearch_TabFallbackByText(t *testing.T) {
	html := `<html><body>
<ul><li>高级检索</li><li><a>专业检索</a></li></ul>
<textarea id="ExpertValue"></textarea>
<input class="btn-search" type="button"/>
</body></html>`
	page := newPageWithLoader(t, map[string]string{config.AdvSearchURL: html})
	rec := &clickRecorder{}
	page.OnClick(rec.handle)

	q := models.SearchQuery{Text: "q", FieldName: "主题", Journal: "管理世界", SortName: "相关度"}
	_, err := newTestDriver().ProfessionalSearch(context.Background(), page, q)
	require.NoError(t, err)
	require.NotEmpty(t, rec.clicked)
	assert.Equal(t, "li", rec.clicked[0])
}

func TestMatchCandidates(t *testing.T) {
	page := newPageWithLoader(t, map[string]string{config.HomeURL: homeHTML})
	rec := &clickRecorder{results: mustDoc(t, resultsPage("深度学习", 1, 3, ""))}
	page.OnClick(rec.handle)

	got, err := newTestDriver().MatchCandidates(context.Background(), page, "深度学习")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "深度学习 研究 1", got[0].Title)
	assert.Equal(t, "https://kns.cnki.net/kcms2/article/abstract?v=1", got[0].URL)
}

func TestMatchCandidates_NoResults(t *testing.T) {
	page := newPageWithLoader(t, map[string]string{config.HomeURL: homeHTML})
	rec := &clickRecorder{results: mustDoc(t, `<html><body>暂无数据</body></html>`)}
	page.OnClick(rec.handle)

	got, err := newTestDriver().MatchCandidates(context.Background(), page, "不存在的标题")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuildExpression(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"主题", "(SU='q') AND (JN='j')"},
		{"作者", "(AU='q') AND (JN='j')"},
		{"DOI", "(DOI='q') AND (JN='j')"},
		{"基金", "(SU='q') AND (JN='j')"},
		{"参考文献", "(SU='q') AND (JN='j')"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildExpression(tt.field, "q", "j"))
		})
	}
}
