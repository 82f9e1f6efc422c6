package constants

import "strconv"

// Category groups taxonomy labels by the kind of bill-of-lading field they
// describe. Categories map many-to-one onto the coarse FUNSD schema.
type Category string

const (
	CategoryRole      Category = "role"
	CategoryGeography Category = "geography"
	CategoryTransport Category = "transport"
	CategoryCargo     Category = "cargo"
	CategoryNumber    Category = "number"
	CategoryLayout    Category = "layout"
	CategoryRate      Category = "rate"
	CategoryOther     Category = "other"
)

// Label is one entry of the fixed bill-of-lading taxonomy.
type Label struct {
	ID       int
	Name     string
	NameCN   string
	Category Category
}

// DefaultLabelID ("other") is resolved for any group the classifier
// did not cover.
const DefaultLabelID = 27

// BillOfLadingLabels is the fixed 29-entry taxonomy, indexed by label ID.
// Loaded once at process start, never mutated.
var BillOfLadingLabels = [...]Label{
	{0, "shipper", "托运人", CategoryRole},
	{1, "consignee", "收货人", CategoryRole},
	{2, "notify_party", "通知方", CategoryRole},
	{3, "port_of_loading", "装货港", CategoryGeography},
	{4, "port_of_discharge", "卸货港", CategoryGeography},
	{5, "port_of_delivery", "交货港", CategoryGeography},
	{6, "place_of_delivery", "交货地点", CategoryGeography},
	{7, "place_of_receipt", "收货地点", CategoryGeography},
	{8, "vessel", "船名", CategoryTransport},
	{9, "voyage", "航次", CategoryTransport},
	{10, "vessel_voyage", "船名航次", CategoryTransport},
	{11, "container_no", "集装箱号", CategoryTransport},
	{12, "seal_no", "封号", CategoryTransport},
	{13, "description_of_goods", "货物描述", CategoryCargo},
	{14, "marks_numbers", "唛头和编号", CategoryCargo},
	{15, "package", "包装件数", CategoryCargo},
	{16, "weight", "重量", CategoryCargo},
	{17, "volume", "体积", CategoryCargo},
	{18, "bl_no", "提单号", CategoryNumber},
	{19, "freight", "运费", CategoryNumber},
	{20, "date", "日期", CategoryNumber},
	{21, "time", "时间", CategoryNumber},
	{22, "header", "头部信息", CategoryLayout},
	{23, "footer", "底部信息", CategoryLayout},
	{24, "company_logo", "公司标志", CategoryLayout},
	{25, "rate", "费率", CategoryRate},
	{26, "total", "总计", CategoryRate},
	{27, "other", "其他信息", CategoryOther},
	{28, "abandon", "废弃内容", CategoryOther},
}

// FUNSDLabels is the coarse output label space consumed by downstream
// form-understanding models. "question" is reserved and currently unused.
var FUNSDLabels = []string{"header", "question", "answer", "other"}

var funsdByCategory = map[Category]string{
	CategoryRole:      "answer",
	CategoryGeography: "answer",
	CategoryTransport: "answer",
	CategoryCargo:     "answer",
	CategoryNumber:    "answer",
	CategoryRate:      "answer",
	CategoryLayout:    "header",
	CategoryOther:     "other",
}

// LabelByID returns the taxonomy entry for id.
func LabelByID(id int) (Label, bool) {
	if id < 0 || id >= len(BillOfLadingLabels) {
		return Label{}, false
	}
	return BillOfLadingLabels[id], true
}

// NameByID returns the canonical label name, falling back to "other" for
// ids outside the taxonomy.
func NameByID(id int) string {
	if l, ok := LabelByID(id); ok {
		return l.Name
	}
	return "other"
}

// FUNSDLabel maps a taxonomy label ID onto the coarse FUNSD schema value.
func FUNSDLabel(id int) string {
	l, ok := LabelByID(id)
	if !ok {
		return "other"
	}
	if s, ok := funsdByCategory[l.Category]; ok {
		return s
	}
	return "other"
}

// IDToNameMapping renders the taxonomy as the {"<id>": name} map persisted
// in classification artifacts.
func IDToNameMapping() map[string]string {
	m := make(map[string]string, len(BillOfLadingLabels))
	for _, l := range BillOfLadingLabels {
		m[strconv.Itoa(l.ID)] = l.Name
	}
	return m
}
