package capgains

// INR is a helper for test to create rupee money from const
func INR(v float64) Money { return M(v, "INR") }

// pINR returns a pointer to rupee money, for optional figures.
func pINR(v float64) *Money {
	m := INR(v)
	return &m
}

// d is a helper for test to create a date from a string.
func d(s string) Date { return MustParse(s) }
