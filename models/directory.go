package models

// UserInfo is the read-only identity record served by the external directory.
type UserInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// AddressInfo is a resolved pickup or drop location.
type AddressInfo struct {
	ID   string  `json:"id"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Text string  `json:"text"`
}
