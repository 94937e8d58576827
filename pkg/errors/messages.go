package errors

import stderrors "errors"

const (
	msgEmptyDescription = "Vui lòng chọn hoặc nhập ít nhất một thông tin về sản phẩm."
	msgGenerator        = "Đã có lỗi xảy ra khi phân tích sản phẩm. Vui lòng kiểm tra lại mô tả hoặc thử lại sau. Chi tiết lỗi đã được ghi lại trong nhật ký."
	msgTimeout          = "Dịch vụ phân tích phản hồi quá lâu. Vui lòng thử lại sau."
	msgMalformed        = "Kết quả phân tích không đúng định dạng. Vui lòng thử lại."
	msgInvalidItem      = "Vui lòng điền đầy đủ và hợp lệ thông tin (tên, đơn vị, đơn giá lớn hơn 0)."
	msgIndexOutOfRange  = "Mục cần xóa không tồn tại."
	msgPersist          = "Đã cập nhật danh mục nhưng chưa lưu được xuống bộ nhớ."
	msgUnknown          = "Đã có lỗi xảy ra. Vui lòng thử lại sau."
)

// UserMessage returns the text shown to the user for err. Transport failures
// and malformed output get different texts so the user knows whether to
// check connectivity or simply retry.
func UserMessage(err error) string {
	var pe *PricingError
	if !stderrors.As(err, &pe) {
		return msgUnknown
	}
	switch pe.Code {
	case CodeEmptyDescription:
		return msgEmptyDescription
	case CodeGeneratorCallFailed:
		return msgGenerator
	case CodeGeneratorTimeout:
		return msgTimeout
	case CodeParseMalformed:
		return msgMalformed
	case CodeInvalidItem:
		return msgInvalidItem
	case CodeIndexOutOfRange:
		return msgIndexOutOfRange
	case CodeStoragePersistFailed:
		return msgPersist
	default:
		return msgUnknown
	}
}

// IsWarning reports whether err is a non-fatal pricing error.
func IsWarning(err error) bool {
	var pe *PricingError
	if !stderrors.As(err, &pe) {
		return false
	}
	return pe.Severity <= SeverityWarning
}
