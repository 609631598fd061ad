// Package user fetches account profile and subscription info for the
// identity a session is signed in as.
package user

import (
	"context"

	"bilicred/internal/session"
)

// MyInfo is the basic account profile.
type MyInfo struct {
	Mid      int64  `json:"mid"`
	Uname    string `json:"uname"`
	UserID   string `json:"userid"`
	Sign     string `json:"sign"`
	Birthday string `json:"birthday"`
	Sex      string `json:"sex"`
	NickFree bool   `json:"nick_free"`
	Rank     string `json:"rank"`
}

// VipInfo is the subscription status of the account.
type VipInfo struct {
	Mid        int64 `json:"mid"`
	VipType    int64 `json:"vip_type"`
	VipStatus  int64 `json:"vip_status"`
	VipDueDate int64 `json:"vip_due_date"`
	VipPayType int64 `json:"vip_pay_type"`
	ThemeType  int64 `json:"theme_type"`
}

// NavInfo is the signed-in slice of the nav document. The same document
// also carries the signing-key material, which the session reads through
// its own narrower view.
type NavInfo struct {
	Mid            int64     `json:"mid"`
	Uname          string    `json:"uname"`
	Face           string    `json:"face"`
	EmailVerified  int64     `json:"email_verified"`
	MobileVerified int64     `json:"mobile_verified"`
	Money          float64   `json:"money"`
	Moral          int64     `json:"moral"`
	LevelInfo      LevelInfo `json:"level_info"`
	Official       Official  `json:"official"`
	Pendant        Pendant   `json:"pendant"`
	Scores         int64     `json:"scores"`
	VipDueDate     int64     `json:"vipDueDate"`
	VipStatus      int64     `json:"vipStatus"`
	VipType        int64     `json:"vipType"`
	Wallet         Wallet    `json:"wallet"`
	HasShop        bool      `json:"has_shop"`
	IsSeniorMember int64     `json:"is_senior_member"`
	IsJury         bool      `json:"is_jury"`
}

// LevelInfo is the experience level block of the nav document.
type LevelInfo struct {
	CurrentLevel int64 `json:"current_level"`
	CurrentMin   int64 `json:"current_min"`
	CurrentExp   int64 `json:"current_exp"`
	// NextExp is a number for most accounts but the string "--" at the
	// level cap, so it stays raw.
	NextExp any `json:"next_exp"`
}

// Official describes an official-account verification, if any.
type Official struct {
	Role  int64  `json:"role"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
	Type  int64  `json:"type"`
}

// Pendant is the avatar frame worn by the account.
type Pendant struct {
	Pid    int64  `json:"pid"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Expire int64  `json:"expire"`
}

// Wallet is the paid-currency balance block.
type Wallet struct {
	Mid           int64 `json:"mid"`
	BcoinBalance  int64 `json:"bcoin_balance"`
	CouponBalance int64 `json:"coupon_balance"`
	CouponDueTime int64 `json:"coupon_due_time"`
}

// GetNav fetches the nav document for the signed-in account.
func GetNav(ctx context.Context, s *session.Session) (*NavInfo, error) {
	return session.GetJSON[NavInfo](ctx, s, s.Endpoints().Nav, nil)
}

// GetMyInfo fetches the account profile.
func GetMyInfo(ctx context.Context, s *session.Session) (*MyInfo, error) {
	return session.GetJSON[MyInfo](ctx, s, s.Endpoints().MyInfo, nil)
}

// GetVipInfo fetches the subscription status.
func GetVipInfo(ctx context.Context, s *session.Session) (*VipInfo, error) {
	return session.GetJSON[VipInfo](ctx, s, s.Endpoints().VipInfo, nil)
}
