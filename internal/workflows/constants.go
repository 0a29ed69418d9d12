package workflows

import "time"

// GetFreightQuoteActivity is the registered name of the quote activity
const GetFreightQuoteActivity = "GetFreightQuote"

// QuoteActivityTimeout covers authentication plus both quote attempts at the
// default carrier timeout.
const QuoteActivityTimeout time.Duration = 2 * time.Minute
