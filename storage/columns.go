package storage

// Column headers of the MLIT transaction export. The loader requires all of
// them; the exporter writes them in this order.
const (
	ColWard       = "市区町村名"
	ColArea       = "面積（㎡）"
	ColAge        = "築年数"
	ColDistance   = "最寄駅：距離（分）"
	ColUnitPrice  = "平米単価"
	ColTotalPrice = "取引価格（総額）"
)

// Columns lists the required columns in export order.
var Columns = []string{
	ColWard,
	ColArea,
	ColAge,
	ColDistance,
	ColUnitPrice,
	ColTotalPrice,
}
