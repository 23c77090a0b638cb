package aave

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// The configuration word is a single-member struct on chain; a static tuple of one
// uint256 encodes the same as a bare uint256, so outputs are declared flat.
const v3PoolABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "asset", "type": "address"}],
    "name": "getReserveData",
    "outputs": [
      {"internalType": "uint256", "name": "configuration", "type": "uint256"},
      {"internalType": "uint128", "name": "liquidityIndex", "type": "uint128"},
      {"internalType": "uint128", "name": "currentLiquidityRate", "type": "uint128"},
      {"internalType": "uint128", "name": "variableBorrowIndex", "type": "uint128"},
      {"internalType": "uint128", "name": "currentVariableBorrowRate", "type": "uint128"},
      {"internalType": "uint128", "name": "currentStableBorrowRate", "type": "uint128"},
      {"internalType": "uint40", "name": "lastUpdateTimestamp", "type": "uint40"},
      {"internalType": "uint16", "name": "id", "type": "uint16"},
      {"internalType": "address", "name": "aTokenAddress", "type": "address"},
      {"internalType": "address", "name": "stableDebtTokenAddress", "type": "address"},
      {"internalType": "address", "name": "variableDebtTokenAddress", "type": "address"},
      {"internalType": "address", "name": "interestRateStrategyAddress", "type": "address"},
      {"internalType": "uint128", "name": "accruedToTreasury", "type": "uint128"},
      {"internalType": "uint128", "name": "unbacked", "type": "uint128"},
      {"internalType": "uint128", "name": "isolationModeTotalDebt", "type": "uint128"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "getReservesList",
    "outputs": [{"internalType": "address[]", "name": "", "type": "address[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint8", "name": "id", "type": "uint8"}],
    "name": "getEModeCategoryData",
    "outputs": [
      {
        "components": [
          {"internalType": "uint16", "name": "ltv", "type": "uint16"},
          {"internalType": "uint16", "name": "liquidationThreshold", "type": "uint16"},
          {"internalType": "uint16", "name": "liquidationBonus", "type": "uint16"},
          {"internalType": "address", "name": "priceSource", "type": "address"},
          {"internalType": "string", "name": "label", "type": "string"}
        ],
        "internalType": "struct DataTypes.EModeCategory",
        "name": "",
        "type": "tuple"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const v2PoolABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "asset", "type": "address"}],
    "name": "getReserveData",
    "outputs": [
      {"internalType": "uint256", "name": "configuration", "type": "uint256"},
      {"internalType": "uint128", "name": "liquidityIndex", "type": "uint128"},
      {"internalType": "uint128", "name": "variableBorrowIndex", "type": "uint128"},
      {"internalType": "uint128", "name": "currentLiquidityRate", "type": "uint128"},
      {"internalType": "uint128", "name": "currentVariableBorrowRate", "type": "uint128"},
      {"internalType": "uint128", "name": "currentStableBorrowRate", "type": "uint128"},
      {"internalType": "uint40", "name": "lastUpdateTimestamp", "type": "uint40"},
      {"internalType": "address", "name": "aTokenAddress", "type": "address"},
      {"internalType": "address", "name": "stableDebtTokenAddress", "type": "address"},
      {"internalType": "address", "name": "variableDebtTokenAddress", "type": "address"},
      {"internalType": "address", "name": "interestRateStrategyAddress", "type": "address"},
      {"internalType": "uint8", "name": "id", "type": "uint8"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "getReservesList",
    "outputs": [{"internalType": "address[]", "name": "", "type": "address[]"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const v3DataProviderABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "asset", "type": "address"}],
    "name": "getReserveData",
    "outputs": [
      {"internalType": "uint256", "name": "unbacked", "type": "uint256"},
      {"internalType": "uint256", "name": "accruedToTreasuryScaled", "type": "uint256"},
      {"internalType": "uint256", "name": "totalAToken", "type": "uint256"},
      {"internalType": "uint256", "name": "totalStableDebt", "type": "uint256"},
      {"internalType": "uint256", "name": "totalVariableDebt", "type": "uint256"},
      {"internalType": "uint256", "name": "liquidityRate", "type": "uint256"},
      {"internalType": "uint256", "name": "variableBorrowRate", "type": "uint256"},
      {"internalType": "uint256", "name": "stableBorrowRate", "type": "uint256"},
      {"internalType": "uint256", "name": "averageStableBorrowRate", "type": "uint256"},
      {"internalType": "uint256", "name": "liquidityIndex", "type": "uint256"},
      {"internalType": "uint256", "name": "variableBorrowIndex", "type": "uint256"},
      {"internalType": "uint40", "name": "lastUpdateTimestamp", "type": "uint40"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const v2DataProviderABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "asset", "type": "address"}],
    "name": "getReserveData",
    "outputs": [
      {"internalType": "uint256", "name": "availableLiquidity", "type": "uint256"},
      {"internalType": "uint256", "name": "totalStableDebt", "type": "uint256"},
      {"internalType": "uint256", "name": "totalVariableDebt", "type": "uint256"},
      {"internalType": "uint256", "name": "liquidityRate", "type": "uint256"},
      {"internalType": "uint256", "name": "variableBorrowRate", "type": "uint256"},
      {"internalType": "uint256", "name": "stableBorrowRate", "type": "uint256"},
      {"internalType": "uint256", "name": "averageStableBorrowRate", "type": "uint256"},
      {"internalType": "uint256", "name": "liquidityIndex", "type": "uint256"},
      {"internalType": "uint256", "name": "variableBorrowIndex", "type": "uint256"},
      {"internalType": "uint40", "name": "lastUpdateTimestamp", "type": "uint40"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const priceOracleABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "asset", "type": "address"}],
    "name": "getAssetPrice",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address[]", "name": "assets", "type": "address[]"}],
    "name": "getAssetsPrices",
    "outputs": [{"internalType": "uint256[]", "name": "", "type": "uint256[]"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const addressesProviderABIJSON = `[
  {"inputs": [], "name": "getPool", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getLendingPool", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getPriceOracle", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getPoolDataProvider", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABIBytes32JSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

type lazyABI struct {
	source string
	once   sync.Once
	parsed abi.ABI
	err    error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.parsed, l.err = abi.JSON(strings.NewReader(l.source))
	})
	return l.parsed, l.err
}

var (
	v3PoolABI            = &lazyABI{source: v3PoolABIJSON}
	v2PoolABI            = &lazyABI{source: v2PoolABIJSON}
	v3DataProviderABI    = &lazyABI{source: v3DataProviderABIJSON}
	v2DataProviderABI    = &lazyABI{source: v2DataProviderABIJSON}
	priceOracleABI       = &lazyABI{source: priceOracleABIJSON}
	addressesProviderABI = &lazyABI{source: addressesProviderABIJSON}
	erc20ABIString       = &lazyABI{source: erc20ABIStringJSON}
	erc20ABIBytes32      = &lazyABI{source: erc20ABIBytes32JSON}
)

// V3PoolABI returns the parsed v3 pool ABI.
func V3PoolABI() (abi.ABI, error) { return v3PoolABI.get() }

// V2PoolABI returns the parsed v2 lending pool ABI.
func V2PoolABI() (abi.ABI, error) { return v2PoolABI.get() }

// V3DataProviderABI returns the parsed v3 protocol data provider ABI.
func V3DataProviderABI() (abi.ABI, error) { return v3DataProviderABI.get() }

// V2DataProviderABI returns the parsed v2 protocol data provider ABI.
func V2DataProviderABI() (abi.ABI, error) { return v2DataProviderABI.get() }

// PriceOracleABI returns the parsed price oracle ABI.
func PriceOracleABI() (abi.ABI, error) { return priceOracleABI.get() }

// AddressesProviderABI returns the parsed addresses provider ABI (v2 and v3 getters).
func AddressesProviderABI() (abi.ABI, error) { return addressesProviderABI.get() }
