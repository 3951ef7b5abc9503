package kvstore

// Keys shared with the mobile app's storage layout.
const (
	KeyOpponents     = "opponents"
	KeyGames         = "games"
	KeyHasPaid       = "hasPaid"
	KeyUserName      = "userName"
	KeyGinValue      = "ginValue"
	KeyBigGinValue   = "bigGinValue"
	KeyUndercutValue = "undercutValue"
	KeyTargetScore   = "targetScore"
	KeyEntitlement   = "entitlement"
)
