package roster

import "strings"

// Sample rosters used by the --sample dry-run mode.
const sampleStudentCSV = `student_id,name,primary_subject,secondary_subject,methodology_needs,abstract
S001,Alice Johnson,Finance,Strategy,"statistics,quantitative","Analysis of merger performance in tech sector using event study methodology to examine stock price reactions and long-term value creation. Focus on technology acquisitions 2020-2024."
S002,Bob Smith,Marketing,,"qualitative,case_study","Consumer behavior analysis through in-depth interviews exploring brand loyalty in sustainable fashion. Thematic analysis of purchasing decisions and environmental consciousness."
S003,Carol Davis,Operations,Finance,"statistics,quantitative,optimization","Supply chain optimization using linear programming and statistical modeling to minimize costs while maintaining service levels in e-commerce logistics networks."
S004,David Wilson,Strategy,Marketing,"mixed_methods,case_study","Digital transformation strategies in retail: comparative case study analysis of traditional retailers adapting to omnichannel customer experiences."
S005,Emma Brown,Finance,,"statistics,econometrics","Impact of ESG scores on stock performance using panel data analysis of FTSE 100 companies over 2015-2023 period with robust econometric methods."`

const sampleSupervisorCSV = `supervisor_id,name,capacity,finance_confidence,marketing_confidence,strategy_confidence,operations_confidence,statistics_confidence,qualitative_confidence,econometrics_confidence,optimization_confidence,will_not_supervise,research_interests,is_default
SUP001,Prof. Anderson,8,5,2,4,3,5,2,4,3,"","My research focuses on corporate finance, particularly merger and acquisition performance, event studies, and valuation methods. I specialize in quantitative finance using econometric methods and statistical analysis of market reactions.",false
SUP002,Dr. Brown,10,1,5,3,2,2,5,1,1,Finance,"I study consumer psychology and brand management with emphasis on qualitative research methodologies. My work explores sustainable consumption, brand loyalty, and consumer decision-making processes through ethnographic and interview-based studies.",false
SUP003,Prof. Chen,6,3,2,5,4,4,3,2,4,"","Strategic management researcher focusing on digital transformation, organizational change, and business model innovation. I examine how companies adapt to technological disruption and develop competitive advantages in digital markets.",false
SUP004,Dr. Davis,12,2,3,2,5,4,3,2,5,"","Operations research specialist in supply chain management and process optimization. I develop mathematical models for logistics, inventory management, and network design using linear programming and simulation methods.",false
SUP005,Prof. Wilson,15,4,4,4,4,4,4,3,3,"","General management researcher with broad interests across finance, strategy, and operations. I supervise diverse projects using both quantitative and qualitative methodologies across all business domains.",true`

// SampleStudents returns the bundled demonstration student roster.
func SampleStudents() ([]Student, error) {
	return ParseStudents(strings.NewReader(sampleStudentCSV))
}

// SampleSupervisors returns the bundled demonstration supervisor roster.
func SampleSupervisors() ([]Supervisor, error) {
	return ParseSupervisors(strings.NewReader(sampleSupervisorCSV))
}
