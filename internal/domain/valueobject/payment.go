package valueobject

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "Success"
	PaymentStatusFail    PaymentStatus = "Fail"
)

type TransferStatus string

const (
	TransferStatusPending TransferStatus = "Pending"
	TransferStatusSuccess TransferStatus = "Success"
	TransferStatusFailed  TransferStatus = "Failed"
)

// PayoutAccountStatus состояние подключённого аккаунта выплат.
type PayoutAccountStatus string

const (
	PayoutAccountNeedsOnboarding PayoutAccountStatus = "NEEDS_ONBOARDING"
	PayoutAccountInReview        PayoutAccountStatus = "IN_REVIEW"
	PayoutAccountActive          PayoutAccountStatus = "ACTIVE"
)

// ClassifyPayoutAccount сводит флаги провайдера к трём состояниям.
func ClassifyPayoutAccount(detailsSubmitted bool, currentlyDue int, chargesEnabled, payoutsEnabled bool) PayoutAccountStatus {
	if !detailsSubmitted || currentlyDue > 0 {
		return PayoutAccountNeedsOnboarding
	}
	if chargesEnabled && payoutsEnabled {
		return PayoutAccountActive
	}
	return PayoutAccountInReview
}
