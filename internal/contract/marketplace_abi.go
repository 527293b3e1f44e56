package contract

// MarketplaceABI is the interface of the on-chain diamond marketplace.
const MarketplaceABI = `[
  {"type":"function","name":"registerDiamond","stateMutability":"nonpayable",
   "inputs":[{"name":"certificateId","type":"string"},{"name":"metadataHash","type":"bytes32"}],"outputs":[]},
  {"type":"function","name":"createLoanRequest","stateMutability":"nonpayable",
   "inputs":[{"name":"tokenId","type":"uint256"},{"name":"borrower","type":"address"},{"name":"duration","type":"uint256"},
             {"name":"price","type":"uint256"},{"name":"approvalHash","type":"bytes32"}],"outputs":[]},
  {"type":"function","name":"approveLoan","stateMutability":"nonpayable",
   "inputs":[{"name":"loanId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"cancelLoan","stateMutability":"nonpayable",
   "inputs":[{"name":"loanId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"returnDiamond","stateMutability":"nonpayable",
   "inputs":[{"name":"loanId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"placeOffer","stateMutability":"nonpayable",
   "inputs":[{"name":"loanId","type":"uint256"},{"name":"price","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"acceptOffer","stateMutability":"nonpayable",
   "inputs":[{"name":"offerId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"rejectOffer","stateMutability":"nonpayable",
   "inputs":[{"name":"offerId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"getLoan","stateMutability":"view",
   "inputs":[{"name":"loanId","type":"uint256"}],
   "outputs":[{"name":"tokenId","type":"uint256"},{"name":"lender","type":"address"},{"name":"borrower","type":"address"},
              {"name":"duration","type":"uint256"},{"name":"startTime","type":"uint256"},{"name":"status","type":"uint8"},
              {"name":"approvalHash","type":"bytes32"}]},
  {"type":"function","name":"getOffer","stateMutability":"view",
   "inputs":[{"name":"offerId","type":"uint256"}],
   "outputs":[{"name":"loanId","type":"uint256"},{"name":"buyer","type":"address"},{"name":"price","type":"uint256"},
              {"name":"expiresAt","type":"uint256"},{"name":"status","type":"uint8"}]},
  {"type":"function","name":"getDiamond","stateMutability":"view",
   "inputs":[{"name":"tokenId","type":"uint256"}],
   "outputs":[{"name":"certificateId","type":"string"},{"name":"owner","type":"address"},
              {"name":"metadataHash","type":"bytes32"},{"name":"onLoan","type":"bool"}]},
  {"type":"event","name":"DiamondRegistered","anonymous":false,
   "inputs":[{"name":"tokenId","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":true}]},
  {"type":"event","name":"LoanRequested","anonymous":false,
   "inputs":[{"name":"loanId","type":"uint256","indexed":true},{"name":"tokenId","type":"uint256","indexed":true},
             {"name":"lender","type":"address","indexed":true},{"name":"borrower","type":"address","indexed":false}]},
  {"type":"event","name":"LoanApproved","anonymous":false,
   "inputs":[{"name":"loanId","type":"uint256","indexed":true},{"name":"borrower","type":"address","indexed":true}]},
  {"type":"event","name":"LoanCancelled","anonymous":false,
   "inputs":[{"name":"loanId","type":"uint256","indexed":true}]},
  {"type":"event","name":"DiamondReturned","anonymous":false,
   "inputs":[{"name":"loanId","type":"uint256","indexed":true},{"name":"tokenId","type":"uint256","indexed":true}]},
  {"type":"event","name":"OfferPlaced","anonymous":false,
   "inputs":[{"name":"offerId","type":"uint256","indexed":true},{"name":"loanId","type":"uint256","indexed":true},
             {"name":"buyer","type":"address","indexed":true},{"name":"price","type":"uint256","indexed":false}]},
  {"type":"event","name":"OfferAccepted","anonymous":false,
   "inputs":[{"name":"offerId","type":"uint256","indexed":true},{"name":"loanId","type":"uint256","indexed":true}]},
  {"type":"event","name":"OfferRejected","anonymous":false,
   "inputs":[{"name":"offerId","type":"uint256","indexed":true},{"name":"loanId","type":"uint256","indexed":true}]}
]`

// Event signatures as matched against topic[0].
const (
	EventDiamondRegistered = "DiamondRegistered(uint256,address)"
	EventLoanRequested     = "LoanRequested(uint256,uint256,address,address)"
	EventLoanApproved      = "LoanApproved(uint256,address)"
	EventLoanCancelled     = "LoanCancelled(uint256)"
	EventDiamondReturned   = "DiamondReturned(uint256,uint256)"
	EventOfferPlaced       = "OfferPlaced(uint256,uint256,address,uint256)"
	EventOfferAccepted     = "OfferAccepted(uint256,uint256)"
	EventOfferRejected     = "OfferRejected(uint256,uint256)"
)
