package report

import (
	"fmt"
	"io"
	"strings"
)

const (
	title = "课表转ICS工具"
	rule  = 50
)

// Console prints the human-readable CLI output. Write errors are ignored;
// the console is best effort.
type Console struct {
	w io.Writer
}

// NewConsole creates a console printer on w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.w, format, args...)
}

// Banner prints the opening title block.
func (c *Console) Banner() {
	line := strings.Repeat("=", rule)
	c.printf("%s\n%s\n%s\n", line, title, line)
}

// Footer prints the closing rule.
func (c *Console) Footer() {
	c.printf("\n%s\n", strings.Repeat("=", rule))
}

// PromptDate asks for the semester start date.
func (c *Console) PromptDate() {
	c.printf("请输入学期开始日期（格式：YYYY-MM-DD）：\n")
}

// CalendarWritten reports the calendar path and event count.
func (c *Console) CalendarWritten(path string, events int) {
	c.printf("\n成功生成ICS文件：%s，包含 %d 个课程事件\n", path, events)
}

// Courses lists every course with its numbered time-location lines.
func (c *Console) Courses(summaries []CourseSummary) {
	c.printf("\n已解析的课程信息：\n")
	for i, s := range summaries {
		c.printf("%d. %s - 教师: %s - 共%d周\n", i+1, s.Name, s.Teachers, s.TotalWeeks)
		for j, line := range s.TimeLocations {
			c.printf("   上课%d: %s\n", j+1, line)
		}
		c.printf("\n")
	}
}

// SummaryWritten reports the JSON summary path.
func (c *Console) SummaryWritten(path string) {
	c.printf("课程数据已保存到 %s\n", path)
}

// Published lists uploaded object keys.
func (c *Console) Published(keys []string) {
	for _, k := range keys {
		c.printf("已上传：%s\n", k)
	}
}

// InputMissing reports a missing timetable file.
func (c *Console) InputMissing(path string) {
	c.printf("错误：找不到课表文件%s\n", path)
	c.printf("请确保文件存在并放置在正确的目录中\n")
}

// InvalidDate reports a malformed semester start.
func (c *Console) InvalidDate() {
	c.printf("日期格式错误，请使用YYYY-MM-DD格式\n")
}

// Failure reports any other error with its user-facing message.
func (c *Console) Failure(msg string) {
	c.printf("发生错误：%s\n", msg)
}
