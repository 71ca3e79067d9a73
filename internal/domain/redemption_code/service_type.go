package redemption_code

import (
	"fmt"
	"strings"
)

// ServiceType サービス種別を表す値オブジェクト
type ServiceType string

const (
	ServiceTypeSubscribers ServiceType = "subscribers"
	ServiceTypeFollowers   ServiceType = "followers"
	ServiceTypeViews       ServiceType = "views"
	ServiceTypeLikes       ServiceType = "likes"
	ServiceTypeComments    ServiceType = "comments"
	ServiceTypeRetweets    ServiceType = "retweets"
)

// NewServiceType 新しいServiceTypeを作成（単数形は複数形に正規化する）
func NewServiceType(s string) (ServiceType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch normalized {
	case "subscriber", "follower", "view", "like", "comment", "retweet":
		normalized += "s"
	}

	st := ServiceType(normalized)
	if !st.Valid() {
		return "", fmt.Errorf("invalid service type: %s", s)
	}
	return st, nil
}

// String 文字列表現を返す
func (st ServiceType) String() string {
	return string(st)
}

// Valid 有効なサービス種別かどうかを返す
func (st ServiceType) Valid() bool {
	switch st {
	case ServiceTypeSubscribers, ServiceTypeFollowers, ServiceTypeViews,
		ServiceTypeLikes, ServiceTypeComments, ServiceTypeRetweets:
		return true
	default:
		return false
	}
}
