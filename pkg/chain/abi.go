package chain

// Minimal ABIs for the contract reads the order service performs.
const (
	proxyRegistryABI = `[{"constant":true,"inputs":[{"name":"","type":"address"}],"name":"proxies","outputs":[{"name":"","type":"address"}],"type":"function"}]`

	erc721ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"operator","type":"address"}],"name":"isApprovedForAll","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"name":"","type":"address"}],"type":"function"}
]`

	erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"}
]`

	exchangeABI = `[{"constant":true,"inputs":[
	{"name":"order","type":"tuple","components":[
		{"name":"exchange","type":"address"},
		{"name":"maker","type":"address"},
		{"name":"taker","type":"address"},
		{"name":"saleSide","type":"uint8"},
		{"name":"saleKind","type":"uint8"},
		{"name":"target","type":"address"},
		{"name":"paymentToken","type":"address"},
		{"name":"calldata_","type":"bytes"},
		{"name":"replacementPattern","type":"bytes"},
		{"name":"staticTarget","type":"address"},
		{"name":"staticExtra","type":"bytes"},
		{"name":"basePrice","type":"uint256"},
		{"name":"endPrice","type":"uint256"},
		{"name":"listingTime","type":"uint256"},
		{"name":"expirationTime","type":"uint256"},
		{"name":"salt","type":"uint256"}
	]},
	{"name":"sig","type":"tuple","components":[
		{"name":"r","type":"bytes32"},
		{"name":"s","type":"bytes32"},
		{"name":"v","type":"uint8"}
	]}
],"name":"validateOrder","outputs":[{"name":"","type":"bool"}],"type":"function"}]`
)
