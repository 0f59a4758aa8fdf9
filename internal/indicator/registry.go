package indicator

import "github.com/atlasforge/flowback/internal/bterrors"

// Name identifies a named indicator in the roster. Names are the
// identifiers a condition's (ticker, metric, window) left side refers to.
type Name string

const (
	Price Name = "PRICE"

	SMA_  Name = "SMA"
	EMA_  Name = "EMA"
	WMA_  Name = "WMA"
	HMA_  Name = "HMA"
	DEMA_ Name = "DEMA"
	TEMA_ Name = "TEMA"
	KAMA_ Name = "KAMA"

	RSIWilder_ Name = "RSI"
	RSISMA_    Name = "RSI_SMA"
	RSIEMA_    Name = "RSI_EMA"
	StochRSI_  Name = "STOCH_RSI"
	WilliamsR_ Name = "WILLIAMS_R"
	CCI_       Name = "CCI"
	CMO_       Name = "CMO"
	StochK_    Name = "STOCH_K"
	StochD_    Name = "STOCH_D"

	ROC_             Name = "ROC"
	MomWeighted_     Name = "MOM_WEIGHTED"
	MomUnweighted_   Name = "MOM_UNWEIGHTED"
	MACDHistogram_   Name = "MACD_HIST"
	PPOHistogram_    Name = "PPO_HIST"
	AroonUp_         Name = "AROON_UP"
	AroonDown_       Name = "AROON_DOWN"
	AroonOscillator_ Name = "AROON_OSC"
	ADX_             Name = "ADX"
	PlusDI_          Name = "PLUS_DI"
	MinusDI_         Name = "MINUS_DI"

	StdDev_              Name = "STDDEV"
	StdDevPrice_         Name = "STDDEV_PRICE"
	ATR_                 Name = "ATR"
	ATRPercent_          Name = "ATR_PCT"
	BollingerPercentB_   Name = "BB_PERCENT_B"
	BollingerBandwidth_  Name = "BB_BANDWIDTH"
	UlcerIndex_          Name = "ULCER_INDEX"
	HistoricalVolatility Name = "HIST_VOL"
	Drawdown_            Name = "DRAWDOWN"
	MaxDrawdown_         Name = "MAX_DRAWDOWN"

	CumulativeReturn_ Name = "CUM_RETURN"
	SMAOfReturns_     Name = "SMA_OF_RETURNS"
	TrendClarity_     Name = "TREND_CLARITY"
	LinRegSlope_      Name = "LINREG_SLOPE"
	LinRegValue_      Name = "LINREG_VALUE"
	PriceVsSMA_       Name = "PRICE_VS_SMA"

	OBVROC_     Name = "OBV_ROC"
	VWAPRatio_  Name = "VWAP_RATIO"
	MFI_        Name = "MFI"
)

// Compute dispatches to the named indicator's formula. window is ignored
// for windowless indicators (Price, MACD/PPO histograms, momentum blends
// which hardcode their own periods).
func Compute(name Name, in Input, window int) ([]float64, error) {
	switch name {
	case Price:
		return CurrentClose(in.Close), nil
	case SMA_:
		return SMA(in.Close, window), nil
	case EMA_:
		return EMA(in.Close, window), nil
	case WMA_:
		return WMA(in.Close, window), nil
	case HMA_:
		return HMA(in.Close, window), nil
	case DEMA_:
		return DEMA(in.Close, window), nil
	case TEMA_:
		return TEMA(in.Close, window), nil
	case KAMA_:
		return KAMA(in.Close, window), nil

	case RSIWilder_:
		return RSIWilder(in.Close, window), nil
	case RSISMA_:
		return RSISMA(in.Close, window), nil
	case RSIEMA_:
		return RSIEMA(in.Close, window), nil
	case StochRSI_:
		return StochRSI(in.Close, window), nil
	case WilliamsR_:
		return WilliamsR(in.High, in.Low, in.Close, window), nil
	case CCI_:
		return CCI(in.High, in.Low, in.Close, window), nil
	case CMO_:
		return CMO(in.Close, window), nil
	case StochK_:
		return StochK(in.High, in.Low, in.Close, window, 3), nil
	case StochD_:
		return StochD(in.High, in.Low, in.Close, window, 3, 3), nil

	case ROC_:
		return ROC(in.Close, window), nil
	case MomWeighted_:
		return MomentumWeighted(in.Close), nil
	case MomUnweighted_:
		return MomentumUnweighted(in.Close), nil
	case MACDHistogram_:
		return MACDHistogram(in.Close), nil
	case PPOHistogram_:
		return PPOHistogram(in.Close), nil
	case AroonUp_:
		return AroonUp(in.High, in.Low, window), nil
	case AroonDown_:
		return AroonDown(in.High, in.Low, window), nil
	case AroonOscillator_:
		return AroonOscillator(in.High, in.Low, window), nil
	case ADX_:
		return ADX(in.High, in.Low, in.Close, window), nil
	case PlusDI_:
		return PlusDI(in.High, in.Low, in.Close, window), nil
	case MinusDI_:
		return MinusDI(in.High, in.Low, in.Close, window), nil

	case StdDev_:
		return StdDev(in.Close, window), nil
	case StdDevPrice_:
		return StdDevPrice(in.Close, window), nil
	case ATR_:
		return ATR(in.High, in.Low, in.Close, window), nil
	case ATRPercent_:
		return ATRPercent(in.High, in.Low, in.Close, window), nil
	case BollingerPercentB_:
		return BollingerPercentB(in.Close, window), nil
	case BollingerBandwidth_:
		return BollingerBandwidth(in.Close, window), nil
	case UlcerIndex_:
		return UlcerIndex(in.Close, window), nil
	case HistoricalVolatility:
		return HistoricalVolatility(in.Close, window), nil
	case Drawdown_:
		return Drawdown(in.Close, window), nil
	case MaxDrawdown_:
		return MaxDrawdown(in.Close, window), nil

	case CumulativeReturn_:
		return CumulativeReturn(in.Close, window), nil
	case SMAOfReturns_:
		return SMAOfReturns(in.Close, window), nil
	case TrendClarity_:
		return TrendClarity(in.Close, window), nil
	case LinRegSlope_:
		return LinRegSlope(in.Close, window), nil
	case LinRegValue_:
		return LinRegValue(in.Close, window), nil
	case PriceVsSMA_:
		return PriceVsSMA(in.Close, window), nil

	case OBVROC_:
		return OBVROC(in.Close, in.Volume, window), nil
	case VWAPRatio_:
		return VWAPRatio(in.High, in.Low, in.Close, in.Volume, window), nil
	case MFI_:
		return MFI(in.High, in.Low, in.Close, in.Volume, window), nil
	}
	return nil, bterrors.Indicator("unknown indicator %q", name)
}
