package service

// Keys of the local durable cache.
const (
	cacheKeyRecords        = "records"
	cacheKeyBaseline       = "baseline"
	cacheKeyPendingSync    = "pending_sync"
	cacheKeyPendingQueue   = "pending_queue"
	cacheKeyLastOpenedID   = "last_opened_id"
	cacheKeyLastOpenedView = "last_opened_view"
	cacheKeyRefreshMarker  = "refresh_marker"
	cacheKeySession        = "session"
)
