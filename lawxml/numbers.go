package lawxml

import (
	"fmt"
	"strings"
)

// Label helpers translating structural Num attributes into the conventional
// Japanese reading used by headings and list labels.

// ArticleLabel converts an Article Num attribute to its reading,
// e.g. "38_3_2" -> "第38条の3の2".
func ArticleLabel(num string) string {
	if num == "" {
		return ""
	}
	parts := strings.Split(num, "_")
	var buf strings.Builder
	buf.WriteString("第" + parts[0] + "条")
	for _, part := range parts[1:] {
		buf.WriteString("の" + part)
	}
	return buf.String()
}

// ItemLabel converts an Item Num attribute to its reading,
// e.g. "1" -> "第1号", "3_2" -> "第3の2号".
func ItemLabel(num string) string {
	if num == "" {
		return ""
	}
	parts := strings.Split(num, "_")
	var buf strings.Builder
	buf.WriteString("第" + parts[0])
	for _, part := range parts[1:] {
		buf.WriteString("の" + part)
	}
	buf.WriteString("号")
	return buf.String()
}

// ParagraphLabel produces the 第N項 label. Single paragraph articles carry no
// label at all, matching how laws are conventionally cited.
func ParagraphLabel(num string, total int) string {
	if total == 1 || num == "" {
		return ""
	}
	return fmt.Sprintf("第%s項", num)
}
