package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAssetNotFound indicates that an asset with the given ID does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrEntryTargetNotFound indicates that an entry target with the given ID does not exist.
	ErrEntryTargetNotFound = errors.New("entry target not found")

	// ErrProfitTargetNotFound indicates that a profit target with the given ID does not exist.
	ErrProfitTargetNotFound = errors.New("profit target not found")

	// ErrWalletNotFound indicates that a wallet with the given ID does not exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrPriceNotFound indicates no stored price for an asset, or for an asset/date combination.
	ErrPriceNotFound = errors.New("asset price not found")

	// ErrSettingNotFound indicates that a setting key has not been configured.
	ErrSettingNotFound = errors.New("setting not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrWalletAssetMismatch indicates that a sell names a wallet belonging
	// to a different asset than the request.
	ErrWalletAssetMismatch = errors.New("wallet does not belong to the requested asset")

	// ErrInsufficientShares indicates that a sell quantity exceeds the
	// remaining shares of the wallet it targets.
	ErrInsufficientShares = errors.New("sell quantity exceeds remaining shares")

	// ErrAllocationSum indicates that profit-target allocation percents do not sum to 100.
	ErrAllocationSum = errors.New("profit target allocations must sum to 100%")

	// ErrProfitTargetInUse indicates that a profit target cannot be deleted
	// because wallets under it still hold shares.
	ErrProfitTargetInUse = errors.New("profit target has wallets with remaining shares")

	// ErrSplitWalletCollision indicates that a split adjustment would move a
	// wallet onto the composite key of a wallet that is not being adjusted.
	ErrSplitWalletCollision = errors.New("split would collide with an existing wallet at the adjusted price")

	// ErrSplitHasLaterTransactions indicates that a split cannot be deleted
	// because transactions postdate it; deleting it would leave already-adjusted
	// wallets inconsistent.
	ErrSplitHasLaterTransactions = errors.New("split cannot be deleted: later transactions exist")

	// ErrAssetInUse indicates that an asset cannot be deleted because it has transactions.
	ErrAssetInUse = errors.New("asset has transaction history")

	// ErrTransactionImmutable indicates an attempt to modify or delete a
	// buy or sell row, whose effects are already baked into wallet state.
	ErrTransactionImmutable = errors.New("buy and sell transactions cannot be modified once applied")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrInvalidSymbol indicates that an asset has no ticker symbol for feed lookups.
	ErrInvalidSymbol = errors.New("symbol is required")

	// ErrPaginationLimit indicates that a page-token loop exceeded the hard iteration cap.
	ErrPaginationLimit = errors.New("pagination iteration limit exceeded")

	// ErrNoFernetKey indicates that secret storage was requested without a configured fernet key.
	ErrNoFernetKey = errors.New("fernet key not configured")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data, as opposed to missing entities or validation issues.
var (
	ErrFailedToRetrieveAssets       = errors.New("failed to retrieve assets")
	ErrFailedToRetrieveAsset        = errors.New("failed to retrieve asset")
	ErrFailedToRetrieveTargets      = errors.New("failed to retrieve targets")
	ErrFailedToRetrieveWallets      = errors.New("failed to retrieve wallets")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToRetrievePrices       = errors.New("failed to retrieve prices")
	ErrFailedToBuildDashboard       = errors.New("failed to build dashboard")
	ErrFailedToBuildOverview        = errors.New("failed to build overview")
	ErrFailedToAnalyzeDips          = errors.New("failed to analyze dip history")
	ErrFailedToRefreshPrice         = errors.New("failed to refresh price")
)
