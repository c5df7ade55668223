package model

// NeedReviewDescription 申请被修改后写入的审核说明
const NeedReviewDescription = "Application already updated, need review."

// Application 用户提交的公告申请
//
// ReviewStatus: nil 待审核, true 已通过, false 已拒绝
type Application struct {
	Content
	ApplicationID     string  `json:"application_id"`
	Applicant         string  `json:"applicant"`
	FCM               *string `json:"fcm"`
	PublishedAt       string  `json:"publishedAt"`
	ReviewStatus      *bool   `json:"reviewStatus"`
	ReviewDescription *string `json:"reviewDescription"`
}

// IsApproved 已通过的申请不可再修改或审核
func (a *Application) IsApproved() bool {
	return a.ReviewStatus != nil && *a.ReviewStatus
}

// IsRejected 申请是否被拒绝
func (a *Application) IsRejected() bool {
	return a.ReviewStatus != nil && !*a.ReviewStatus
}
