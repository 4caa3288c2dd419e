package dto

// AddReviewRequest HTTP添加评论请求
type AddReviewRequest struct {
	Rating int    `json:"rating" binding:"required" example:"5"`
	Text   string `json:"text" binding:"required" example:"硬核科幻，强烈推荐"`
}

// UpdateReviewRequest HTTP更新评论请求
// 字段为指针：未传的字段保持不变
type UpdateReviewRequest struct {
	Rating *int    `json:"rating" example:"4"`
	Text   *string `json:"text" example:"二刷之后改成4分"`
}
