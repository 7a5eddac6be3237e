package earnings

import "time"

// Test-only hooks for the external earnings_test package.
var IST = ist

func SetNow(s *Service, now func() time.Time) { s.now = now }
