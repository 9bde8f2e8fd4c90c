// backend/src/store/broker_seed.go
package store

import "github.com/username/tradeledger/backend/src/models"

func rate(f float64) *float64 { return &f }

// seedBrokers is the built-in Taiwanese broker fee schedule. A nil foreign
// equity rate means the broker publishes no rate and fees cannot be
// auto-computed for that class.
var seedBrokers = []models.Broker{
	{
		ID: "cathay", Name: "國泰證券", NameEn: "Cathay Securities",
		TwStockDiscount: 0.28, TwStockMinFee: 1,
		UsStockFeeRate: rate(0.001), UsStockMinFee: rate(0),
		Notes:     "台股電子下單2.8折（線上開戶標準優惠）。美股0.1%免低消，ETF均一價3美元。",
		SortOrder: 1,
	},
	{
		ID: "yuanta", Name: "元大證券", NameEn: "Yuanta Securities",
		TwStockDiscount: 0.6, TwStockMinFee: 20,
		UsStockFeeRate: rate(0.001), UsStockMinFee: rate(1),
		Notes:     "台股牌告6折，可協商至2.8~3.8折。美股0.1%低消1美元（促銷價）。券源最多。",
		SortOrder: 2,
	},
	{
		ID: "fubon", Name: "富邦證券", NameEn: "Fubon Securities",
		TwStockDiscount: 0.6, TwStockMinFee: 20,
		UsStockFeeRate: rate(0.0006), UsStockMinFee: rate(0),
		Notes:     "台股牌告6折，新戶100萬內享1.8折。美股新戶0.06%免低消。",
		SortOrder: 3,
	},
	{
		ID: "sinopac", Name: "永豐金證券", NameEn: "SinoPac Securities",
		TwStockDiscount: 0.2, TwStockMinFee: 1,
		UsStockFeeRate: rate(0.0008), UsStockMinFee: rate(0),
		Notes:     "大戶投APP每月成交100萬內享2折，超過6.5折。美股約0.08%免低消。",
		SortOrder: 4,
	},
	{
		ID: "kgi", Name: "凱基證券", NameEn: "KGI Securities",
		TwStockDiscount: 0.6, TwStockMinFee: 20,
		UsStockFeeRate: rate(0.005), UsStockMinFee: rate(39.9),
		Notes:     "台股牌告6折，新戶前3個月可享2.5~2.8折，可協商至3~5折。",
		SortOrder: 5,
	},
	{
		ID: "ctbc", Name: "中國信託證券", NameEn: "CTBC Securities",
		TwStockDiscount: 0.38, TwStockMinFee: 20,
		UsStockFeeRate: rate(0.005), UsStockMinFee: rate(35),
		Notes:     "台股3.8折。美股牌告0.5%低消35美元。",
		SortOrder: 6,
	},
	{
		ID: "esun", Name: "玉山證券", NameEn: "E.SUN Securities",
		TwStockDiscount: 0.6, TwStockMinFee: 20,
		UsStockFeeRate: rate(0.005), UsStockMinFee: rate(35),
		Notes:     "台股牌告6折，依交易量可降至3.8折。富果帳戶零股最低1元。",
		SortOrder: 7,
	},
	{
		ID: "taishin", Name: "台新證券", NameEn: "Taishin Securities",
		TwStockDiscount: 0.28, TwStockMinFee: 20,
		UsStockFeeRate: rate(0.005), UsStockMinFee: rate(35),
		Notes:     "台股線上開戶2.8折。美股牌告0.5%低消35美元。",
		SortOrder: 8,
	},
	{
		ID: "jihsun", Name: "日盛證券", NameEn: "JihSun Securities",
		TwStockDiscount: 0.6, TwStockMinFee: 20,
		Notes:     "台股牌告6折。已併入國泰金控體系。",
		SortOrder: 9,
	},
	{
		ID: "capital", Name: "群益證券", NameEn: "Capital Securities",
		TwStockDiscount: 0.65, TwStockMinFee: 20,
		UsStockFeeRate: rate(0.002), UsStockMinFee: rate(3),
		Notes:     "台股牌告6.5折，可與營業員協商。美股0.2%低消3美元。",
		SortOrder: 10,
	},
	{
		ID: "ibf", Name: "國票證券", NameEn: "IBF Securities",
		TwStockDiscount: 0.65, TwStockMinFee: 20,
		UsStockFeeRate: rate(0.005), UsStockMinFee: rate(39),
		Notes:     "台股牌告6.5折，線上開戶可能取得2.8折。定期定額及零股最低1元。",
		SortOrder: 11,
	},
	{
		ID: "mega", Name: "兆豐證券", NameEn: "Mega Securities",
		TwStockDiscount: 0.5, TwStockMinFee: 20,
		UsStockFeeRate: rate(0.004), UsStockMinFee: rate(0),
		Notes:     "台股5折。美股約0.4%免低消（優惠期間）。",
		SortOrder: 12,
	},
	{
		ID: "hnanb", Name: "華南永昌證券", NameEn: "Hua Nan Securities",
		TwStockDiscount: 0.65, TwStockMinFee: 1,
		UsStockFeeRate: rate(0.005), UsStockMinFee: rate(35),
		Notes:     "台股牌告6.5折，最低手續費1元。",
		SortOrder: 13,
	},
	{
		ID: "president", Name: "統一證券", NameEn: "President Securities",
		TwStockDiscount: 0.6, TwStockMinFee: 1,
		UsStockFeeRate: rate(0.005), UsStockMinFee: rate(39.9),
		Notes:     "台股牌告6折（UMONEY帳戶1.68~2.5折依資產規模），最低1元。",
		SortOrder: 14,
	},
}
