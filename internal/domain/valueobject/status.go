package valueobject

import "github.com/ignatzorin/gig-marketplace/internal/pkg/apperror"

type GigStatus string

const (
	GigStatusOpen        GigStatus = "Open"
	GigStatusRequested   GigStatus = "Requested"
	GigStatusAssigned    GigStatus = "Assigned"
	GigStatusInProgress  GigStatus = "In-Progress"
	GigStatusCompleted   GigStatus = "Completed"
	GigStatusApproved    GigStatus = "Approved"
	GigStatusRejected    GigStatus = "Rejected"
	GigStatusNotAssigned GigStatus = "Not-Assigned"
)

func (s GigStatus) IsValid() bool {
	switch s {
	case GigStatusOpen, GigStatusRequested, GigStatusAssigned, GigStatusInProgress,
		GigStatusCompleted, GigStatusApproved, GigStatusRejected, GigStatusNotAssigned:
		return true
	}
	return false
}

func NewGigStatus(status string) (GigStatus, error) {
	s := GigStatus(status)
	if !s.IsValid() {
		return "", apperror.InvalidRequest("Invalid gig status: " + status)
	}
	return s, nil
}

// AcceptsBids сообщает, можно ли откликаться на гиг в этом статусе.
func (s GigStatus) AcceptsBids() bool {
	return s == GigStatusOpen || s == GigStatusRequested
}

// IsTerminal true для логических концов жизненного цикла.
func (s GigStatus) IsTerminal() bool {
	return s == GigStatusApproved || s == GigStatusRejected
}

// RequiresBid сообщает, нужен ли bidId для перехода в этот статус.
func (s GigStatus) RequiresBid() bool {
	return s != GigStatusApproved && s != GigStatusRejected
}

// AdminOnly статусы, которые напрямую выставляет только администратор.
func (s GigStatus) AdminOnly() bool {
	return s == GigStatusOpen || s == GigStatusRequested
}

// SetByGigCreator статусы, которые выставляет создатель гига.
func (s GigStatus) SetByGigCreator() bool {
	switch s {
	case GigStatusOpen, GigStatusAssigned, GigStatusNotAssigned, GigStatusApproved, GigStatusRejected:
		return true
	}
	return false
}

// SetByBidCreator статусы, которые выставляет исполнитель по отклику.
func (s GigStatus) SetByBidCreator() bool {
	switch s {
	case GigStatusRequested, GigStatusInProgress, GigStatusCompleted:
		return true
	}
	return false
}

// gigTransitions допустимые текущие статусы для каждого целевого.
// Open/Requested отсутствуют: это административный override без guard'а.
var gigTransitions = map[GigStatus][]GigStatus{
	GigStatusAssigned:    {GigStatusRequested},
	GigStatusNotAssigned: {GigStatusRequested},
	GigStatusInProgress:  {GigStatusAssigned},
	GigStatusCompleted:   {GigStatusInProgress},
	GigStatusApproved:    {GigStatusCompleted, GigStatusRejected},
	GigStatusRejected:    {GigStatusCompleted, GigStatusRejected},
}

func (s GigStatus) CanTransitionTo(target GigStatus) bool {
	if target.AdminOnly() {
		return true
	}

	allowed, ok := gigTransitions[target]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == s {
			return true
		}
	}
	return false
}

// Группы статусов для истории платежей.
var (
	InProgressBucket = []GigStatus{GigStatusInProgress, GigStatusAssigned}
	CompletedBucket  = []GigStatus{GigStatusCompleted, GigStatusApproved}
)

type BidStatus string

const (
	BidStatusRequested   BidStatus = "Requested"
	BidStatusAssigned    BidStatus = "Assigned"
	BidStatusNotAssigned BidStatus = "Not-Assigned"

	// Словарь эндпоинта /decision.
	BidStatusAccepted BidStatus = "Accepted"
	// Словарь эндпоинта /review.
	BidStatusApproved BidStatus = "Approved"
	// Общий для обоих эндпоинтов.
	BidStatusRejected BidStatus = "Rejected"
)

func (s BidStatus) IsValid() bool {
	switch s {
	case BidStatusRequested, BidStatusAssigned, BidStatusNotAssigned,
		BidStatusAccepted, BidStatusApproved, BidStatusRejected:
		return true
	}
	return false
}

// IsAccepted: отклик принят создателем гига через /decision или /review.
func (s BidStatus) IsAccepted() bool {
	return s == BidStatusAccepted || s == BidStatusApproved
}

func NewBidStatus(status string) (BidStatus, error) {
	s := BidStatus(status)
	if !s.IsValid() {
		return "", apperror.InvalidRequest("Invalid bid status: " + status)
	}
	return s, nil
}
