package market

import "time"

var fixedTime = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
