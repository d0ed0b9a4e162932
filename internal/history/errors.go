package history

import "errors"

// ErrHistoryTruncated означает, что события новее since были удалены вместе
// с журналом страницы. Клиенту нужно заново прочитать снимок страницы.
var ErrHistoryTruncated = errors.New("history truncated")
