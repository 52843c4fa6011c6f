package utils

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
)

// MentionPattern 匹配 @username
var MentionPattern = regexp.MustCompile(`@([a-zA-Z0-9_-]+)`)

// ExtractMentions 提取去重后的被提及用户名，保持出现顺序
func ExtractMentions(content string) []string {
	matches := MentionPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// EnhanceHTMLContent 为图片增加懒加载和防盗链属性，并把正文中的 @用户名 转为主页链接
func EnhanceHTMLContent(htmlStr string) string {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
	})

	// 只处理正文文本节点，跳过链接和代码块
	doc.Find("p, li, blockquote, td").Contents().Each(func(i int, s *goquery.Selection) {
		if len(s.Nodes) == 0 || s.Nodes[0].Type != nethtml.TextNode {
			return
		}
		if s.ParentsFiltered("a, code, pre").Length() > 0 {
			return
		}
		text := s.Nodes[0].Data
		if !MentionPattern.MatchString(text) {
			return
		}
		s.ReplaceWithHtml(linkMentions(text))
	})

	// goquery 会补全 html/body，这里只取 body 内容
	out, _ := doc.Find("body").Html()
	if out == "" {
		out, _ = doc.Html()
	}
	return out
}

func linkMentions(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range MentionPattern.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		name := text[loc[2]:loc[3]]
		b.WriteString(`<a href="/u/` + name + `" class="mention">@` + name + `</a>`)
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
