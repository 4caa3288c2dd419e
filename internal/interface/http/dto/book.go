package dto

// CreateBookRequest HTTP创建图书请求
// averageRating由评论计算得出，请求体中即使传了也会被忽略
type CreateBookRequest struct {
	Title       string `json:"title" binding:"required" example:"三体"`
	Author      string `json:"author" binding:"required" example:"刘慈欣"`
	Genre       string `json:"genre" binding:"required" example:"科幻"`
	Description string `json:"description" binding:"required" example:"地球文明与三体文明的第一次接触"`
}

// ListBooksQuery 图书列表查询参数
// 全部按字符串接收，由应用层统一解析（非法值返回400而不是绑定失败）
type ListBooksQuery struct {
	Author string `form:"author" example:"刘慈欣"`
	Genre  string `form:"genre" example:"科幻"`
	Page   string `form:"page" example:"1"`
	Limit  string `form:"limit" example:"10"`
	Sort   string `form:"sort" example:"createdAt" enums:"createdAt,title,author,genre,averageRating"`
	Order  string `form:"order" example:"desc" enums:"asc,desc"`
}

// SearchBooksQuery 搜索参数
type SearchBooksQuery struct {
	Query string `form:"query" example:"三体"`
}
