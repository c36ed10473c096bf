package ui

var (
	RenderLocation = renderLocation
	RenderStatus   = renderStatus
	FormatCounts   = formatCounts
)
