package crawlers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("解析测试HTML失败: %v", err)
	}
	return doc
}

func resultRow(title string, n int) string {
	return fmt.Sprintf(`<tr>
<td class="name"><a class="fz14" href="https://kns.cnki.net/kcms2/article/abstract?v=%d">%s</a></td>
<td class="author"><a>张三</a> <a>李四</a></td>
<td class="source"><a>物理学报</a></td>
<td class="date"> 2023-05-01 </td>
<td class="quote"><a>12</a></td>
<td class="download"><a>345</a></td>
</tr>`, n, title)
}

// resultsPage 生成一页检索结果,next 取值 "", "enabled", "disabled"
func resultsPage(query string, start, count int, next string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="gridTable"><table class="result-table-list"><tbody>`)
	for i := 0; i < count; i++ {
		b.WriteString(resultRow(fmt.Sprintf("%s 研究 %d", query, start+i), start+i))
	}
	b.WriteString(`</tbody></table></div>`)
	switch next {
	case "enabled":
		b.WriteString(`<a id="PageNext" class="pagesnums">下一页</a>`)
	case "disabled":
		b.WriteString(`<a id="PageNext" class="pagesnums disabled">下一页</a>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// pagedResults 把多页文档串起来,点击 #PageNext 切换到下一页
func pagedResults(t *testing.T, pages ...string) (*HTMLPage, *int) {
	t.Helper()
	docs := make([]*goquery.Document, 0, len(pages))
	for _, p := range pages {
		docs = append(docs, mustDoc(t, p))
	}

	current := 0
	page := NewHTMLPage("https://kns.cnki.net/kns8s/defaultresult/index", docs[0])
	clicks := 0
	page.OnClick(func(p *HTMLPage, sel *goquery.Selection) error {
		if id, _ := sel.Attr("id"); id == "PageNext" && current+1 < len(docs) {
			clicks++
			current++
			p.SetDocument(docs[current])
		}
		return nil
	})
	return page, &clicks
}

const detailHTML = `<html><body>
<div class="top-tip">
  <span>2023, 45(3): 12-20</span>
  <a href="https://navi.cnki.net/knavi/journals/WLXB/detail">物理学报 .</a>
</div>
<div class="wx-tit">
  <h1> 石墨烯的制备与表征 </h1>
  <h2>Preparation and Characterization of Graphene</h2>
  <h3 class="author"><span><a>张三</a></span><span><a>李四</a></span></h3>
  <h3 class="orgn"><span><a>清华大学</a></span><span><a>北京大学</a></span></h3>
</div>
<span id="ChDivSummary">本文研究了石墨烯。</span>
<span id="EnChDivSummary">This paper studies graphene.</span>
<p class="keywords"><a>石墨烯;</a><a>制备；</a><a> </a></p>
<p class="keywords-en"><a>graphene;</a><a>CVD;</a></p>
<ul>
  <li class="top-space"><span>DOI：</span><p>10.7498/aps.72.20230001</p></li>
  <li class="top-space"><span>基金资助：</span><p>国家自然科学基金(12345678)</p></li>
  <li class="top-space"><span>分类号：</span><p>O613.71</p></li>
</ul>
<div class="total-inform"><span>下载：</span><em>1024</em><span>页码：</span><em>12-20</em></div>
<div id="refs"><a>36</a></div>
</body></html>`
