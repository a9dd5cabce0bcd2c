package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"rating-predictor/internal/domain/models"
)

// 版面参数，单位为 pt，纵坐标以页面左下角为原点描述
const (
	pageHeight = 792.0

	titleX         = 300.0
	titleY         = 750.0
	tableX         = 30.0
	headerY        = 700.0
	headerRule     = 10.0 // 表头下划线与表头基线的距离
	firstRowOffset = 25.0 // 第一行与表头基线的距离
	rowRule        = 15.0 // 行分隔线与行基线的距离
	rowStep        = 30.0
	lineLeading    = 12.0
	bottomMargin   = 50.0

	wrapWidth = 25 // 描述列每行字符数

	// Title 首页标题
	Title = "Historial de Predicciones"
	// ContinuationTitle 续页标题
	ContinuationTitle = "Historial de Predicciones (cont.)"
)

// columnWidths 各列宽度，与 models.HistoryColumns 一一对应
var columnWidths = []float64{70, 200, 60, 70, 100}

func tableWidth() float64 {
	var w float64
	for _, cw := range columnWidths {
		w += cw
	}
	return w
}

// wrapText 按字符（非字节）每 width 个切分
func wrapText(s string, width int) []string {
	r := []rune(s)
	if len(r) <= width {
		return []string{s}
	}

	parts := make([]string, 0, (len(r)+width-1)/width)
	for i := 0; i < len(r); i += width {
		end := i + width
		if end > len(r) {
			end = len(r)
		}
		parts = append(parts, string(r[i:end]))
	}
	return parts
}

// pdfWriter 封装坐标换算和 cp1252 转码
type pdfWriter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// text 在左下角原点坐标系下绘制文本
func (w *pdfWriter) text(x, y float64, s string) {
	w.pdf.Text(x, pageHeight-y, w.tr(s))
}

// centred 以 x 为中心绘制文本
func (w *pdfWriter) centred(x, y float64, s string) {
	s = w.tr(s)
	w.pdf.Text(x-w.pdf.GetStringWidth(s)/2, pageHeight-y, s)
}

func (w *pdfWriter) rule(y float64) {
	w.pdf.Line(tableX, pageHeight-y, tableX+tableWidth(), pageHeight-y)
}

// startPage 新建一页并绘制标题和表头
func (w *pdfWriter) startPage(title string) {
	w.pdf.AddPage()

	w.pdf.SetFont("Helvetica", "B", 18)
	w.centred(titleX, titleY, title)

	w.pdf.SetFont("Helvetica", "B", 10)
	x := tableX
	for i, col := range models.HistoryColumns {
		w.text(x, headerY, col)
		x += columnWidths[i]
	}
	w.rule(headerY - headerRule)
}

// placement 一条记录所在的页和首行基线
type placement struct {
	page  int
	y     float64
	lines []string
}

// layout 计算每条记录的位置。
// 描述最后一行会低于 50pt 时整条记录移到下一页；页首的记录不再换页。
func layout(records []models.HistoryRecord) []placement {
	top := headerY - firstRowOffset
	out := make([]placement, len(records))

	page, y := 0, top
	for i, r := range records {
		lines := wrapText(r.Description, wrapWidth)
		extra := lineLeading * float64(len(lines)-1)
		if y-extra < bottomMargin && y < top {
			page++
			y = top
		}
		out[i] = placement{page: page, y: y, lines: lines}
		y -= rowStep + extra
	}
	return out
}

// WritePDF 以 US Letter 分页表格写出历史记录
// 描述列每 25 个字符换行，行距 12pt；记录放不下 50pt 页边距时换页，续页标题带 "(cont.)"
func WritePDF(out io.Writer, records []models.HistoryRecord) error {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(Title, true)
	pdf.SetLineWidth(0.5)

	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	w.startPage(Title)

	rows := layout(records)
	page := 0
	for n, r := range records {
		p := rows[n]
		if p.page != page {
			w.startPage(ContinuationTitle)
			page = p.page
		}
		pdf.SetFont("Helvetica", "", 9)

		x := tableX
		for i, field := range recordFields(r) {
			if i == 1 {
				for k, part := range p.lines {
					w.text(x, p.y-float64(k)*lineLeading, part)
				}
			} else {
				w.text(x, p.y, field)
			}
			x += columnWidths[i]
		}

		w.rule(p.y - rowRule)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
