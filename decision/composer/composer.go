// Package composer builds the text sent to the generator: the product
// description assembled from form inputs, and the system instruction that
// pins the generator to the names currently in the catalog.
package composer

import (
	"fmt"
	"strconv"
	"strings"

	"smart-pricing/decision/catalog"
)

// FormInputs are the structured product fields a user fills in.
type FormInputs struct {
	CabinetTypes []string
	Width        string // metres
	Height       string
	Depth        string
	Materials    []string // selected catalog material names
	Accessories  []string // selected catalog accessory names
	Extra        string   // free-text additional requirements
}

// BuildDescription joins the non-empty fields into sentence fragments.
// It returns "" when every field is empty; callers must not call the
// generator in that case.
func BuildDescription(in FormInputs) string {
	var parts []string

	if types := nonEmpty(in.CabinetTypes); len(types) > 0 {
		parts = append(parts, fmt.Sprintf("Làm một tủ bếp %s.", strings.Join(types, " và ")))
	}

	var dims []string
	if w := strings.TrimSpace(in.Width); w != "" {
		dims = append(dims, "rộng "+w+"m")
	}
	if h := strings.TrimSpace(in.Height); h != "" {
		dims = append(dims, "cao "+h+"m")
	}
	if d := strings.TrimSpace(in.Depth); d != "" {
		dims = append(dims, "sâu "+d+"m")
	}
	if len(dims) > 0 {
		parts = append(parts, fmt.Sprintf("Kích thước: %s.", strings.Join(dims, " ")))
	}

	if mats := nonEmpty(in.Materials); len(mats) > 0 {
		parts = append(parts, fmt.Sprintf("Sử dụng các vật liệu chính: %s.", strings.Join(mats, ", ")))
	}
	if accs := nonEmpty(in.Accessories); len(accs) > 0 {
		parts = append(parts, fmt.Sprintf("Lắp đặt các phụ kiện sau: %s.", strings.Join(accs, ", ")))
	}
	if extra := strings.TrimSpace(in.Extra); extra != "" {
		parts = append(parts, fmt.Sprintf("Yêu cầu bổ sung: %s.", extra))
	}

	return strings.Join(parts, " ")
}

// ProductContent wraps a description as the user content of a request.
func ProductContent(description string) string {
	return fmt.Sprintf("Mô tả sản phẩm: %q", description)
}

// Sentinel names offered when a category is empty, so the generator has
// nothing plausible to invent.
const (
	NoMaterials   = "Không có vật liệu nào"
	NoAccessories = "Không có phụ kiện nào"
	NoLabor       = "Không có công đoạn nào"
)

// BuildInstructions returns the system instruction for a catalog. The exact
// current names of every item are embedded and the generator is told not to
// alter them, because matching downstream is exact after case folding.
func BuildInstructions(cat catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("Bạn là một chuyên gia bóc tách khối lượng và dự toán chi phí trong ngành sản xuất nội thất gỗ công nghiệp và bảng hiệu quảng cáo tại Việt Nam.\n")
	b.WriteString("Nhiệm vụ của bạn là phân tích mô tả sản phẩm của người dùng và trả về một cấu trúc JSON chi tiết.\n")
	b.WriteString(`Cấu trúc JSON phải bao gồm các mục: "productName" (string), "dimensions" (string), "materials" (mảng), "accessories" (mảng), và "laborSteps" (mảng).` + "\n")
	b.WriteString(`Trong mỗi đối tượng của các mảng trên, phải có: "name" (string), "quantity" (number), và "unit" (string).` + "\n\n")

	b.WriteString(`QUAN TRỌNG: Khi xác định thuộc tính "name" cho các mục trong "materials", "accessories", và "laborSteps", bạn BẮT BUỘC PHẢI CHỌN MỘT TÊN CHÍNH XÁC từ danh sách được cung cấp dưới đây. Không được tự ý thay đổi, chuẩn hóa hay dịch tên gọi.` + "\n")
	fmt.Fprintf(&b, "- Danh sách tên Vật Liệu hợp lệ: [%s]\n", quoteNames(cat.Names(catalog.Materials), NoMaterials))
	fmt.Fprintf(&b, "- Danh sách tên Phụ Kiện hợp lệ: [%s]\n", quoteNames(cat.Names(catalog.Accessories), NoAccessories))
	fmt.Fprintf(&b, "- Danh sách tên Công Đoạn hợp lệ: [%s]\n\n", quoteNames(cat.Names(catalog.Labor), NoLabor))

	b.WriteString(`Cố gắng ước tính "quantity" một cách hợp lý nhất từ mô tả. Mặc định các công đoạn nên có số lượng là 1 trừ khi có mô tả chi tiết hơn.` + "\n")
	b.WriteString("Luôn luôn chỉ trả về duy nhất một đối tượng JSON hợp lệ, không thêm bất kỳ văn bản, giải thích, hay ký tự markdown ```json ``` nào khác.\n")
	return b.String()
}

func quoteNames(names []string, sentinel string) string {
	if len(names) == 0 {
		return strconv.Quote(sentinel)
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = strconv.Quote(n)
	}
	return strings.Join(quoted, ", ")
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
