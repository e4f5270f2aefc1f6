package v1

import "strconv"

func int32Param(raw string) (int32, error) {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func intParam(raw string) (int, error) {
	return strconv.Atoi(raw)
}
